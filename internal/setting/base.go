package setting

// Setting is implemented by every concrete setting type by embedding Base
type Setting interface {
	settingBase() *Base
}

// Base is embedded by concrete setting structs
type Base struct{}

func (b *Base) settingBase() *Base { return b }

// Connection is the view of the owning aggregate that hooks get while a
// setting is serialized
type Connection interface {
	SettingByName(name string) Setting
}
