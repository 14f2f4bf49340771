package manage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sshmgr/internal/config"
	"sshmgr/internal/models"
)

// fakeStore 记录调用顺序，可注入保存失败
type fakeStore struct {
	calls   []string
	saveErr error
	saved   [][]byte
}

func (f *fakeStore) Backup() error {
	f.calls = append(f.calls, "backup")
	return nil
}

func (f *fakeStore) Save(inv *models.Inventory) error {
	f.calls = append(f.calls, "save")
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := config.Encode(inv)
	if err != nil {
		return err
	}
	f.saved = append(f.saved, data)
	return nil
}

func newManager() (*Manager, *fakeStore) {
	fs := &fakeStore{}
	return New(fs, nil, nil), fs
}

func encode(t *testing.T, inv *models.Inventory) string {
	t.Helper()
	data, err := config.Encode(inv)
	require.NoError(t, err)
	return string(data)
}

func TestConfirmed(t *testing.T) {
	for _, yes := range []string{"yes", "YES", " Yes ", "yEs"} {
		assert.True(t, Confirmed(yes), yes)
	}
	for _, no := range []string{"", "no", "y", "yes!", "yess"} {
		assert.False(t, Confirmed(no), no)
	}
}

func TestAddProject_Scenario(t *testing.T) {
	m, fs := newManager()
	inv := models.NewInventory()

	p, err := m.AddProject(inv, ProjectFields{Name: "prod", Port: "2222"})
	require.NoError(t, err)
	assert.Equal(t, "prod", p.Name)
	require.Len(t, inv.Projects, 1)
	assert.Equal(t, models.Project{Name: "prod", Port: "2222", Hosts: []models.Host{}}, inv.Projects[0])
	assert.Equal(t, []string{"backup", "save"}, fs.calls)
	assert.JSONEq(t, `{"projects":[{"name":"prod","port":"2222","hosts":[]}]}`, string(fs.saved[0]))
}

func TestAddProject_Validation(t *testing.T) {
	m, fs := newManager()
	inv := models.NewInventory()
	_, err := m.AddProject(inv, ProjectFields{Name: "prod"})
	require.NoError(t, err)
	fs.calls = nil

	tests := []struct {
		name string
		in   ProjectFields
	}{
		{name: "empty name", in: ProjectFields{Name: "  "}},
		{name: "duplicate", in: ProjectFields{Name: "prod"}},
		{name: "separator", in: ProjectFields{Name: "a | b"}},
		{name: "bad port", in: ProjectFields{Name: "x", Port: "ssh"}},
		{name: "port range", in: ProjectFields{Name: "x", Port: "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := encode(t, inv)
			_, err := m.AddProject(inv, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, before, encode(t, inv))
		})
	}
	assert.Empty(t, fs.calls, "failed validation must not persist")
}

func TestAddProject_UniqueNames(t *testing.T) {
	m, _ := newManager()
	inv := models.NewInventory()
	for _, name := range []string{"a", "b", "a", "c", "b", "a"} {
		_, _ = m.AddProject(inv, ProjectFields{Name: name})
	}
	assert.Equal(t, []string{"a", "b", "c"}, []string{inv.Projects[0].Name, inv.Projects[1].Name, inv.Projects[2].Name})
	require.NoError(t, inv.Validate())
}

func TestEditProject(t *testing.T) {
	m, _ := newManager()
	inv := &models.Inventory{Projects: []models.Project{
		{Name: "prod", User: "deploy", Key: "k", Domain: "example.com", Port: "2222", Hosts: []models.Host{}},
		{Name: "lab", Hosts: []models.Host{}},
	}}

	// 改名成另一个已存在的项目
	err := m.EditProject(inv, &inv.Projects[0], ProjectFields{Name: "lab", User: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "deploy", inv.Projects[0].User)

	// 改成自己的名字允许
	err = m.EditProject(inv, &inv.Projects[0], ProjectFields{Name: "prod", User: "root", Key: "k", Domain: "", Port: "2200"})
	require.NoError(t, err)
	assert.Equal(t, models.Project{Name: "prod", User: "root", Key: "k", Port: "2200", Hosts: []models.Host{}}, inv.Projects[0])

	// 名称为空不改名，可选字段为空则删除
	err = m.EditProject(inv, &inv.Projects[0], ProjectFields{})
	require.NoError(t, err)
	assert.Equal(t, models.Project{Name: "prod", Hosts: []models.Host{}}, inv.Projects[0])

	err = m.EditProject(inv, &inv.Projects[1], ProjectFields{Name: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "staging", inv.Projects[1].Name)
}

func TestEditProject_PrunesHostOverrides(t *testing.T) {
	m, fs := newManager()
	inv := &models.Inventory{Projects: []models.Project{{
		Name: "prod", User: "deploy", Port: "2222",
		Hosts: []models.Host{
			{Name: "web1", Addr: "10.0.0.1", Port: "2200"},
			{Name: "db1", Addr: "10.0.0.2", User: "postgres", Port: "2200"},
		},
	}}}
	before := []models.Endpoint{
		inv.Projects[0].Effective(&inv.Projects[0].Hosts[0]),
		inv.Projects[0].Effective(&inv.Projects[0].Hosts[1]),
	}

	err := m.EditProject(inv, &inv.Projects[0], ProjectFields{User: "postgres", Port: "2200"})
	require.NoError(t, err)

	p := &inv.Projects[0]
	assert.Equal(t, []models.Host{
		{Name: "web1", Addr: "10.0.0.1"},
		{Name: "db1", Addr: "10.0.0.2"},
	}, p.Hosts)
	// 显式覆盖过的值不变；web1 没有覆盖用户，继承新的默认值
	assert.Equal(t, before[0].Port, p.Effective(&p.Hosts[0]).Port)
	assert.Equal(t, "postgres", p.Effective(&p.Hosts[0]).User)
	assert.Equal(t, before[1], p.Effective(&p.Hosts[1]))

	require.Len(t, fs.saved, 1)
	assert.Equal(t, 1, strings.Count(string(fs.saved[0]), `"port": "2200"`))
}

func TestDeleteProject_Confirmation(t *testing.T) {
	for _, answer := range []string{"no", "", "y", "nope"} {
		t.Run("answer "+answer, func(t *testing.T) {
			m, fs := newManager()
			inv := &models.Inventory{Projects: []models.Project{{Name: "prod", Hosts: []models.Host{{Name: "web1", Addr: "a"}}}}}
			before := encode(t, inv)

			err := m.DeleteProject(inv, &inv.Projects[0], answer)
			assert.ErrorIs(t, err, ErrNotConfirmed)
			assert.Equal(t, before, encode(t, inv))
			assert.Empty(t, fs.calls)
		})
	}

	m, fs := newManager()
	inv := &models.Inventory{Projects: []models.Project{
		{Name: "prod", Hosts: []models.Host{{Name: "web1", Addr: "a"}}},
		{Name: "lab", Hosts: []models.Host{}},
	}}
	require.NoError(t, m.DeleteProject(inv, &inv.Projects[0], "YES"))
	require.Len(t, inv.Projects, 1)
	assert.Equal(t, "lab", inv.Projects[0].Name)
	assert.Equal(t, []string{"backup", "save"}, fs.calls)
}

func TestCommit_SaveFailureKeepsMutation(t *testing.T) {
	fs := &fakeStore{saveErr: errors.Join(config.ErrConfigWriteFailed, errors.New("read-only"))}
	core, logs := observer.New(zapcore.DebugLevel)
	m := New(fs, nil, zap.New(core))
	inv := models.NewInventory()

	_, err := m.AddProject(inv, ProjectFields{Name: "prod"})
	assert.ErrorIs(t, err, config.ErrConfigWriteFailed)
	assert.Len(t, inv.Projects, 1, "in-memory mutation stays applied")
	assert.Equal(t, 1, logs.FilterMessage("save failed").Len())
}

func TestManager_WithRealStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssh_manager", "hosts.json")
	store := config.NewStore(path)
	m := New(store, nil, nil)

	inv, err := store.Load()
	require.NoError(t, err)
	_, err = m.AddProject(inv, ProjectFields{Name: "prod", Port: "2222"})
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	inv, err = store.Load()
	require.NoError(t, err)
	_, err = m.AddHost(inv, &inv.Projects[0], HostFields{Name: "web1", Addr: "10.0.0.1"})
	require.NoError(t, err)

	bak, err := os.ReadFile(store.BackupPath())
	require.NoError(t, err)
	assert.Equal(t, first, bak, "backup holds the state before the last mutation")

	inv, err = store.Load()
	require.NoError(t, err)
	require.Len(t, inv.Projects[0].Hosts, 1)
}
