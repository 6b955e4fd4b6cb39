package settings

import (
	"encoding/json"

	"connsettings/internal/setting"
)

// Team and team port setting names
const (
	TeamSettingName     = "team"
	TeamPortSettingName = "team-port"
)

// Team configures a team device. Config is the teamd JSON configuration.
type Team struct {
	setting.Base

	Config string
}

func NewTeam() *Team { return &Team{} }

var teamClass = &setting.Class{
	Name:        TeamSettingName,
	Priority:    1,
	ErrorDomain: errorDomain(TeamSettingName),
	Parent:      virtualInterface,
	New:         func() setting.Setting { return NewTeam() },
	Properties: []*setting.Property{
		setting.StringProperty("config", func(s *Team) *string { return &s.Config }),
	},
}

func verifyTeamConfig(settingName, config string) (setting.VerifyResult, error) {
	if config != "" && !json.Valid([]byte(config)) {
		return invalidProperty(settingName, "config", "is not a valid JSON document")
	}
	return setting.VerifySuccess, nil
}

func (t *Team) Verify(_ *setting.Registry, all []setting.Setting) (setting.VerifyResult, error) {
	if res, err := verifyVirtualInterfaceName(all); res != setting.VerifySuccess {
		return res, err
	}
	return verifyTeamConfig(TeamSettingName, t.Config)
}

// TeamPort configures one port of a team
type TeamPort struct {
	setting.Base

	Config string
}

func NewTeamPort() *TeamPort { return &TeamPort{} }

var teamPortClass = &setting.Class{
	Name:        TeamPortSettingName,
	Priority:    3,
	ErrorDomain: errorDomain(TeamPortSettingName),
	New:         func() setting.Setting { return NewTeamPort() },
	Properties: []*setting.Property{
		setting.StringProperty("config", func(s *TeamPort) *string { return &s.Config }),
	},
}

func (t *TeamPort) Verify(*setting.Registry, []setting.Setting) (setting.VerifyResult, error) {
	return verifyTeamConfig(TeamPortSettingName, t.Config)
}
