package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefront", cmd.Use)
	assert.Contains(t, cmd.Long, "session database")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"login"}, {"signup"}, {"logout"}, {"whoami"}, {"profile"},
		{"products", "list"}, {"products", "show"},
		{"cart", "show"}, {"cart", "add"}, {"cart", "update"}, {"cart", "remove"}, {"cart", "clear"},
		{"checkout"}, {"orders"},
		{"admin", "products", "create"}, {"admin", "orders", "status"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "env-file", "api-url", "session"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, name)
	}
}

func TestLoginCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	loginCmd, _, err := cmd.Find([]string{"login"})
	require.NoError(t, err)

	require.NotNil(t, loginCmd.Flags().Lookup("email"))
	require.NotNil(t, loginCmd.Flags().Lookup("password"))
	stdin := loginCmd.Flags().Lookup("password-stdin")
	require.NotNil(t, stdin)
	assert.Equal(t, "false", stdin.DefValue)
}

func TestProductsListFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"products", "list"})
	require.NoError(t, err)

	assert.Equal(t, "1", listCmd.Flags().Lookup("page").DefValue)
	assert.Equal(t, "10", listCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "", listCmd.Flags().Lookup("search").DefValue)
}

func TestCartShowFlags(t *testing.T) {
	cmd := NewRootCommand()
	showCmd, _, err := cmd.Find([]string{"cart", "show"})
	require.NoError(t, err)

	cached := showCmd.Flags().Lookup("cached")
	require.NotNil(t, cached)
	assert.Equal(t, "false", cached.DefValue)
}

func TestAdminProductFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, sub := range []string{"create", "update"} {
		c, _, err := cmd.Find([]string{"admin", "products", sub})
		require.NoError(t, err)
		for _, name := range []string{"name", "description", "price", "stock", "category"} {
			assert.NotNil(t, c.Flags().Lookup(name), "%s --%s", sub, name)
		}
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"json", true},
		{"text", true},
		{"JSON", false},
		{"yaml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidFormat(tt.format))
		})
	}
}

func TestInvalidFormatFlag(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "whoami"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
