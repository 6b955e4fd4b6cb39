package service

import (
	"context"
	"errors"
	"fmt"

	"connsettings/internal/codec"
	"connsettings/internal/connection"
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// ErrNoSecrets is returned when a requested secret is held nowhere
var ErrNoSecrets = errors.New("no secrets available")

func sealAAD(uuid, settingName string) []byte {
	return []byte(uuid + "/" + settingName)
}

// systemOwned selects secrets the service stores itself
func systemOwned(_ setting.Setting, _ string, f setting.SecretFlags) bool {
	return f&(setting.SecretFlagAgentOwned|setting.SecretFlagNotSaved) == 0
}

// agentOwned selects secrets kept by the secret agent
func agentOwned(_ setting.Setting, _ string, f setting.SecretFlags) bool {
	return f.Has(setting.SecretFlagAgentOwned)
}

// secretsWhere returns the secrets of conn that keep selects
func secretsWhere(conn *connection.Connection, keep setting.SecretPredicate) (wire.Connection, error) {
	dup, err := conn.Duplicate()
	if err != nil {
		return nil, err
	}
	dup.ClearSecretsWithFlags(func(s setting.Setting, name string, f setting.SecretFlags) bool {
		return !keep(s, name, f)
	})
	return dup.ToWire(setting.SerializeOnlySecrets)
}

// saveSecrets seals system-owned secrets into the repository and hands
// agent-owned ones to the agent. Not-saved secrets are dropped.
func (s *ConnectionService) saveSecrets(ctx context.Context, uuid string, conn *connection.Connection) error {
	system, err := secretsWhere(conn, systemOwned)
	if err != nil {
		return err
	}
	sealed := make(map[string][]byte, len(system))
	for _, name := range system.Names() {
		data, err := codec.EncodeJSON(wire.Connection{name: system[name]})
		if err != nil {
			return err
		}
		blob, err := s.vault.Seal(data, sealAAD(uuid, name))
		if err != nil {
			return fmt.Errorf("seal %s secrets: %w", name, err)
		}
		sealed[name] = blob
	}
	if err := s.repo.SaveSecrets(ctx, uuid, sealed); err != nil {
		return err
	}

	owned, err := secretsWhere(conn, agentOwned)
	if err != nil {
		return err
	}
	if s.agent == nil {
		if len(owned) > 0 {
			s.logger.Warn("no secret agent, dropping agent-owned secrets", "uuid", uuid)
		}
		return nil
	}
	if len(owned) == 0 {
		if err := s.agent.DeleteSecrets(ctx, uuid); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		return nil
	}
	// An empty map makes the agent forget a setting that no longer has
	// agent-owned secrets.
	for _, st := range conn.Settings() {
		if name := setting.Default.NameOf(st); owned[name] == nil {
			owned[name] = wire.Map{}
		}
	}
	if err := s.agent.SaveSecrets(ctx, uuid, owned); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}

// storedSecrets unseals the system-owned secrets of one setting
func (s *ConnectionService) storedSecrets(ctx context.Context, uuid, settingName string) (wire.Map, error) {
	blob, err := s.repo.GetSecrets(ctx, uuid, settingName)
	if err != nil || blob == nil {
		return nil, err
	}
	data, err := s.vault.Unseal(blob, sealAAD(uuid, settingName))
	if err != nil {
		return nil, fmt.Errorf("unseal %s secrets: %w", settingName, err)
	}
	doc, err := codec.DecodeJSON(setting.Default, data)
	if err != nil {
		return nil, err
	}
	return doc[settingName], nil
}

// loadSecrets applies the stored system-owned secrets to conn
func (s *ConnectionService) loadSecrets(ctx context.Context, uuid string, conn *connection.Connection) error {
	for _, st := range conn.Settings() {
		name := setting.Default.NameOf(st)
		m, err := s.storedSecrets(ctx, uuid, name)
		if err != nil {
			return err
		}
		if len(m) == 0 {
			continue
		}
		if _, err := conn.UpdateSecrets(name, m); err != nil {
			return err
		}
	}
	return nil
}

// carrySecrets copies secrets of old into settings of conn that hold none
func carrySecrets(old, conn *connection.Connection) error {
	prev, err := old.ToWire(setting.SerializeOnlySecrets)
	if err != nil {
		return err
	}
	cur, err := conn.ToWire(setting.SerializeOnlySecrets)
	if err != nil {
		return err
	}
	for _, name := range prev.Names() {
		if conn.SettingByName(name) == nil || len(cur[name]) > 0 {
			continue
		}
		if _, err := conn.UpdateSecrets(name, prev[name]); err != nil {
			return err
		}
	}
	return nil
}

// GetSecrets returns the secrets of one setting of a connection.
// System-owned secrets come from memory, agent-owned ones from the agent.
// With requestNew set, stored secrets are skipped and only the agent is
// asked. When hints are given, at least one of them must be found.
func (s *ConnectionService) GetSecrets(ctx context.Context, uuid, settingName string, hints []string, requestNew bool) (wire.Map, error) {
	s.mu.RLock()
	e, ok := s.conns[uuid]
	var conn *connection.Connection
	if ok {
		var err error
		if conn, err = e.conn.Duplicate(); err != nil {
			s.mu.RUnlock()
			return nil, err
		}
	}
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if conn.SettingByName(settingName) == nil {
		return nil, &setting.MissingSettingError{Name: settingName}
	}

	out := make(wire.Map)
	if !requestNew {
		system, err := secretsWhere(conn, systemOwned)
		if err != nil {
			return nil, err
		}
		for k, v := range system[settingName] {
			out[k] = v
		}
	}

	if s.agent != nil {
		fromAgent, err := s.agent.GetSecrets(ctx, uuid, settingName)
		if err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
		// Reject values the setting cannot hold
		if len(fromAgent) > 0 {
			if _, err := conn.UpdateSecrets(settingName, fromAgent); err != nil {
				return nil, err
			}
			// Only keys the setting still marks agent-owned count
			owned, err := secretsWhere(conn, agentOwned)
			if err != nil {
				return nil, err
			}
			for k := range fromAgent {
				if v, ok := owned[settingName][k]; ok {
					out[k] = overlay(out[k], v)
				}
			}
		}
	}

	if len(hints) > 0 && !containsAny(out, hints) {
		return nil, fmt.Errorf("%w: %s.%v", ErrNoSecrets, settingName, hints)
	}
	return out, nil
}

// overlay returns v laid over cur. Dicts merge key by key so a setting
// keeping secrets in one map can mix system and agent owners.
func overlay(cur, v wire.Value) wire.Value {
	if cur.Kind() != wire.KindDict || v.Kind() != wire.KindDict {
		return v
	}
	merged := cur.AsDict()
	for k, x := range v.AsDict() {
		merged[k] = x
	}
	return wire.Dict(merged)
}

func containsAny(m wire.Map, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
