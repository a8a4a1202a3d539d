package eventlog

import (
	"context"
	"strings"
)

// SettingsView is the operator-facing rendering of a routing table: one row
// per kind and one reset control per kind.
type SettingsView struct {
	WorkspaceID string    `json:"workspace_id"`
	Rows        []Row     `json:"rows"`
	Controls    []Control `json:"controls"`
}

type Row struct {
	Kind       Kind   `json:"kind"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	ChannelID  string `json:"channel_id,omitempty"`
	Configured bool   `json:"configured"`
}

// Control is a reset button. Enabled iff the kind currently has a
// destination; a disabled control must be rendered as non-interactive.
type Control struct {
	Kind    Kind   `json:"kind"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Render is a pure function of the routing table.
func Render(cfg RoutingConfig) SettingsView {
	v := SettingsView{
		WorkspaceID: cfg.WorkspaceID,
		Rows:        make([]Row, 0, len(Kinds)),
		Controls:    make([]Control, 0, len(Kinds)),
	}
	for _, k := range Kinds {
		id, ok := cfg.Destination(k)
		row := Row{Kind: k, Label: k.Label(), Value: notSpecified, Configured: ok}
		if ok {
			row.Value = channelMention(id)
			row.ChannelID = id
		}
		v.Rows = append(v.Rows, row)
		v.Controls = append(v.Controls, Control{Kind: k, Label: k.Label(), Enabled: ok})
	}
	return v
}

// Table renders the rows as "Label: value" lines.
func (v SettingsView) Table() string {
	var b strings.Builder
	for i, r := range v.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("**")
		b.WriteString(r.Label)
		b.WriteString("**: ")
		b.WriteString(r.Value)
	}
	return b.String()
}

// Control returns the control for k.
func (v SettingsView) Control(k Kind) (Control, bool) {
	for _, c := range v.Controls {
		if c.Kind == k {
			return c, true
		}
	}
	return Control{}, false
}

// Settings is the settings state machine. It has a single Viewing state:
// View enters it, Reset clears one kind and loops back to it with a fresh
// rendering.
type Settings struct {
	store Store
}

func NewSettings(store Store) *Settings {
	return &Settings{store: store}
}

func (s *Settings) View(ctx context.Context, workspaceID string) (SettingsView, error) {
	cfg, err := s.store.GetOrCreate(ctx, workspaceID)
	if err != nil {
		return SettingsView{}, WrapUnavailable(err)
	}
	return Render(cfg), nil
}

// Reset clears kind and re-renders from the store. cleared reports whether
// a write happened: resetting an unset kind writes nothing and re-renders
// the same view.
func (s *Settings) Reset(ctx context.Context, workspaceID string, kind Kind) (v SettingsView, cleared bool, err error) {
	if !kind.Valid() {
		return SettingsView{}, false, ErrUnknownKind
	}
	cfg, err := s.store.GetOrCreate(ctx, workspaceID)
	if err != nil {
		return SettingsView{}, false, WrapUnavailable(err)
	}
	if _, ok := cfg.Destination(kind); !ok {
		return Render(cfg), false, nil
	}
	if err := s.store.SetDestination(ctx, workspaceID, kind, ""); err != nil {
		return SettingsView{}, false, WrapUnavailable(err)
	}
	v, err = s.View(ctx, workspaceID)
	if err != nil {
		return SettingsView{}, true, err
	}
	return v, true, nil
}
