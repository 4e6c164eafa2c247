package fixtures

import (
	"os/exec"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvInherits(t *testing.T) {
	assert.True(t, Env{}.Inherits(), "inherit defaults to true")
	assert.True(t, Env{Inherit: lo.ToPtr(true)}.Inherits())
	assert.False(t, Env{Inherit: lo.ToPtr(false)}.Inherits())
}

func TestEnvApplyDefault(t *testing.T) {
	// A fully default env leaves cmd.Env nil so the child inherits the
	// parent environment untouched.
	cmd := exec.Command("true")
	Env{}.Apply(cmd)
	assert.Nil(t, cmd.Env)
}

func TestEnvApplyNoInherit(t *testing.T) {
	cmd := exec.Command("true")
	Env{
		Inherit: lo.ToPtr(false),
		Add:     map[string]string{"A": "1"},
	}.Apply(cmd)
	assert.Equal(t, []string{"A=1"}, cmd.Env)
}

func TestEnvApplyRemoveThenAdd(t *testing.T) {
	cmd := exec.Command("true")
	t.Setenv("CMDSNAP_REMOVED", "parent")
	t.Setenv("CMDSNAP_READDED", "parent")
	Env{
		Remove: []string{"CMDSNAP_REMOVED", "CMDSNAP_READDED"},
		Add:    map[string]string{"CMDSNAP_READDED": "child"},
	}.Apply(cmd)

	assert.NotContains(t, cmd.Env, "CMDSNAP_REMOVED=parent")
	assert.NotContains(t, cmd.Env, "CMDSNAP_READDED=parent")
	// Additions run after removals, so the add always takes effect.
	assert.Contains(t, cmd.Env, "CMDSNAP_READDED=child")
}

func TestEnvUpdateFirstWins(t *testing.T) {
	env := Env{
		Add:    map[string]string{"SHARED": "case"},
		Remove: []string{"CASE_REMOVE"},
	}
	env.Update(Env{
		Inherit: lo.ToPtr(false),
		Add:     map[string]string{"SHARED": "default", "EXTRA": "default"},
		Remove:  []string{"DEFAULT_REMOVE"},
	})

	// Case-level keys are never overwritten by directory defaults.
	assert.Equal(t, "case", env.Add["SHARED"])
	assert.Equal(t, "default", env.Add["EXTRA"])
	assert.Equal(t, []string{"CASE_REMOVE", "DEFAULT_REMOVE"}, env.Remove)
	require.NotNil(t, env.Inherit)
	assert.False(t, *env.Inherit)
}

func TestEnvUpdateKeepsCaseInherit(t *testing.T) {
	env := Env{Inherit: lo.ToPtr(true)}
	env.Update(Env{Inherit: lo.ToPtr(false)})
	assert.True(t, *env.Inherit)
}

func TestParseCommandStatus(t *testing.T) {
	tests := []struct {
		token    string
		expected CommandStatus
		wantErr  bool
	}{
		{token: "success", expected: CommandStatus{Kind: StatusSuccess}},
		{token: "failed", expected: CommandStatus{Kind: StatusFailed}},
		{token: "interrupted", expected: CommandStatus{Kind: StatusInterrupted}},
		{token: "skipped", expected: CommandStatus{Kind: StatusSkipped}},
		{token: "42", expected: CommandStatus{Kind: StatusCode, Code: 42}},
		{token: "-1", expected: CommandStatus{Kind: StatusCode, Code: -1}},
		{token: "bogus", wantErr: true},
		{token: "Success", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			status, err := ParseCommandStatus(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "expected an exit code")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestBinResolve(t *testing.T) {
	path, err := BinFromPath("/usr/bin/cmd").Resolve()
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/cmd", path)

	_, err = BinFromName("foo").Resolve()
	require.Error(t, err)
	assert.Equal(t, "unknown bin.name = foo", err.Error())

	_, err = BinFromError("build failed: exit status 2").Resolve()
	require.Error(t, err)
	assert.Equal(t, "build failed: exit status 2", err.Error())

	_, err = Bin{}.Resolve()
	require.Error(t, err)
	assert.Equal(t, "no bin specified", err.Error())
}

func TestRelCwd(t *testing.T) {
	fs := Filesystem{Base: "/f/case.in", Cwd: "/f/case.in/sub"}
	rel, err := fs.RelCwd()
	require.NoError(t, err)
	assert.Equal(t, "sub", rel)

	fs = Filesystem{Base: "/f/case.in", Cwd: "/f/case.in"}
	rel, err = fs.RelCwd()
	require.NoError(t, err)
	assert.Equal(t, "", rel)

	fs = Filesystem{Base: "/f/case.in", Cwd: "/f/elsewhere"}
	_, err = fs.RelCwd()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be within")

	rel, err = Filesystem{Cwd: "/f/somewhere"}.RelCwd()
	require.NoError(t, err)
	assert.Equal(t, "", rel)
}

func TestExpectedStatusDefault(t *testing.T) {
	assert.Equal(t, CommandStatus{Kind: StatusSuccess}, Run{}.ExpectedStatus())

	status := CommandStatus{Kind: StatusCode, Code: 3}
	assert.Equal(t, status, Run{Status: &status}.ExpectedStatus())
}
