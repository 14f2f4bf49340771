package manage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sshmgr/internal/models"
)

func prodInventory() *models.Inventory {
	return &models.Inventory{Projects: []models.Project{
		{Name: "prod", User: "deploy", Key: "~/.ssh/prod", Port: "2222", Hosts: []models.Host{}},
	}}
}

func mustHostJSON(t *testing.T, h *models.Host) string {
	t.Helper()
	data, err := json.Marshal(h)
	require.NoError(t, err)
	return string(data)
}

func TestAddHost_InheritsProjectPort(t *testing.T) {
	m, _ := newManager()
	inv := prodInventory()
	p := &inv.Projects[0]

	h, err := m.AddHost(inv, p, HostFields{Name: "web1", Addr: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.Host{Name: "web1", Addr: "10.0.0.1"}, *h)
	assert.Equal(t, "2222", p.Effective(h).Port)
	assert.Equal(t, "deploy", p.Effective(h).User)
}

func TestAddHost_PrunesRedundant(t *testing.T) {
	m, _ := newManager()
	inv := prodInventory()
	p := &inv.Projects[0]

	h, err := m.AddHost(inv, p, HostFields{Name: "web2", Addr: "10.0.0.2", User: "deploy", Key: "~/.ssh/web2", Port: "2222"})
	require.NoError(t, err)
	assert.Equal(t, models.Host{Name: "web2", Addr: "10.0.0.2", Key: "~/.ssh/web2"}, *h)
}

func TestAddHost_Validation(t *testing.T) {
	m, fs := newManager()
	inv := prodInventory()
	p := &inv.Projects[0]
	_, err := m.AddHost(inv, p, HostFields{Name: "web1", Addr: "10.0.0.1"})
	require.NoError(t, err)
	fs.calls = nil

	for _, in := range []HostFields{
		{Name: "", Addr: "10.0.0.9"},
		{Name: "web9", Addr: ""},
		{Name: "web1", Addr: "10.0.0.9"},
		{Name: "a | b", Addr: "10.0.0.9"},
		{Name: "web9", Addr: "10.0.0.9", Port: "0"},
	} {
		_, err := m.AddHost(inv, p, in)
		assert.ErrorIs(t, err, ErrValidation, "%+v", in)
	}
	assert.Len(t, p.Hosts, 1)
	assert.Empty(t, fs.calls)
}

func TestAddHost_UniqueWithinProjectOnly(t *testing.T) {
	m, _ := newManager()
	inv := &models.Inventory{Projects: []models.Project{
		{Name: "a", Hosts: []models.Host{}},
		{Name: "b", Hosts: []models.Host{}},
	}}
	for _, name := range []string{"h1", "h2", "h1"} {
		_, _ = m.AddHost(inv, &inv.Projects[0], HostFields{Name: name, Addr: "x"})
	}
	_, err := m.AddHost(inv, &inv.Projects[1], HostFields{Name: "h1", Addr: "y"})
	require.NoError(t, err)
	assert.Len(t, inv.Projects[0].Hosts, 2)
	require.NoError(t, inv.Validate())
}

func TestEditHost_PortEqualToDefaultIsPruned(t *testing.T) {
	m, _ := newManager()
	inv := prodInventory()
	p := &inv.Projects[0]
	p.Hosts = []models.Host{{Name: "web1", Addr: "10.0.0.1"}}
	h := &p.Hosts[0]

	require.NoError(t, m.EditHost(inv, p, h, HostFields{Port: "2222"}))
	assert.Empty(t, h.Port)
	assert.Equal(t, "2222", p.Effective(h).Port)
	assert.JSONEq(t, `{"name":"web1","addr":"10.0.0.1"}`, mustHostJSON(t, h))
}

func TestEditHost_Fields(t *testing.T) {
	tests := []struct {
		name    string
		project models.Project
		host    models.Host
		in      HostFields
		want    models.Host
	}{
		{
			name:    "override differs from default",
			project: models.Project{Name: "p", User: "deploy", Port: "2222"},
			host:    models.Host{Name: "h", Addr: "a"},
			in:      HostFields{User: "root", Port: "2200"},
			want:    models.Host{Name: "h", Addr: "a", User: "root", Port: "2200"},
		},
		{
			name:    "input equal to default removes override",
			project: models.Project{Name: "p", User: "deploy", Key: "k"},
			host:    models.Host{Name: "h", Addr: "a", User: "root", Key: "other"},
			in:      HostFields{User: "deploy", Key: "k"},
			want:    models.Host{Name: "h", Addr: "a"},
		},
		{
			name:    "empty input keeps existing override",
			project: models.Project{Name: "p", User: "deploy"},
			host:    models.Host{Name: "h", Addr: "a", User: "root", Port: "2200"},
			in:      HostFields{},
			want:    models.Host{Name: "h", Addr: "a", User: "root", Port: "2200"},
		},
		{
			name:    "empty input cleans redundant value",
			project: models.Project{Name: "p", User: "deploy"},
			host:    models.Host{Name: "h", Addr: "a", User: "deploy", Port: "22"},
			in:      HostFields{},
			want:    models.Host{Name: "h", Addr: "a"},
		},
		{
			name:    "global default port without project port",
			project: models.Project{Name: "p"},
			host:    models.Host{Name: "h", Addr: "a", Port: "2200"},
			in:      HostFields{Port: "22"},
			want:    models.Host{Name: "h", Addr: "a"},
		},
		{
			name:    "rename and readdress",
			project: models.Project{Name: "p"},
			host:    models.Host{Name: "h", Addr: "a"},
			in:      HostFields{Name: "h2", Addr: "b"},
			want:    models.Host{Name: "h2", Addr: "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newManager()
			tt.project.Hosts = []models.Host{tt.host}
			inv := &models.Inventory{Projects: []models.Project{tt.project}}
			p := &inv.Projects[0]

			require.NoError(t, m.EditHost(inv, p, &p.Hosts[0], tt.in))
			assert.Equal(t, tt.want, p.Hosts[0])
		})
	}
}

func TestEditHost_RenameCollision(t *testing.T) {
	m, fs := newManager()
	inv := &models.Inventory{Projects: []models.Project{{Name: "p", Hosts: []models.Host{
		{Name: "h1", Addr: "a"},
		{Name: "h2", Addr: "b"},
	}}}}
	p := &inv.Projects[0]

	err := m.EditHost(inv, p, &p.Hosts[0], HostFields{Name: "h2", Addr: "changed"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.Host{Name: "h1", Addr: "a"}, p.Hosts[0])
	assert.Empty(t, fs.calls)

	require.NoError(t, m.EditHost(inv, p, &p.Hosts[0], HostFields{Name: "h1"}))
	assert.Equal(t, "h1", p.Hosts[0].Name)
}

func TestDeleteHost(t *testing.T) {
	m, fs := newManager()
	inv := &models.Inventory{Projects: []models.Project{{Name: "p", Hosts: []models.Host{
		{Name: "h1", Addr: "a"},
		{Name: "h2", Addr: "b"},
	}}}}
	p := &inv.Projects[0]
	before := encode(t, inv)

	assert.ErrorIs(t, m.DeleteHost(inv, p, &p.Hosts[0], "no"), ErrNotConfirmed)
	assert.Equal(t, before, encode(t, inv))
	assert.Empty(t, fs.calls)

	require.NoError(t, m.DeleteHost(inv, p, &p.Hosts[0], "Yes"))
	assert.Equal(t, []models.Host{{Name: "h2", Addr: "b"}}, p.Hosts)
}
