package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mealsync", cmd.Use)
	assert.Contains(t, cmd.Long, "queues writes")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"status", "sync", "log", "progress", "breakdown", "offday", "weight", "goal", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
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

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestLogCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	logCmd, _, err := cmd.Find([]string{"log"})
	require.NoError(t, err)

	portionsFlag := logCmd.Flags().Lookup("portions")
	require.NotNil(t, portionsFlag)
	assert.Equal(t, "1", portionsFlag.DefValue)

	typeFlag := logCmd.Flags().Lookup("type")
	require.NotNil(t, typeFlag)
	assert.Equal(t, "snack", typeFlag.DefValue)

	dateFlag := logCmd.Flags().Lookup("date")
	require.NotNil(t, dateFlag)
	assert.Equal(t, "", dateFlag.DefValue)
}

func TestBreakdownCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	breakdownCmd, _, err := cmd.Find([]string{"breakdown"})
	require.NoError(t, err)

	weeksFlag := breakdownCmd.Flags().Lookup("weeks")
	require.NotNil(t, weeksFlag)
	assert.Equal(t, "4", weeksFlag.DefValue)

	monthsFlag := breakdownCmd.Flags().Lookup("months")
	require.NotNil(t, monthsFlag)
	assert.Equal(t, "3", monthsFlag.DefValue)
}

func TestOffDayCommandStructure(t *testing.T) {
	cmd := NewRootCommand()

	addCmd, _, err := cmd.Find([]string{"offday", "add"})
	require.NoError(t, err)
	assert.Equal(t, "add", addCmd.Name())
	require.NotNil(t, addCmd.Flags().Lookup("reason"))

	removeCmd, _, err := cmd.Find([]string{"offday", "remove"})
	require.NoError(t, err)
	assert.Equal(t, "remove", removeCmd.Name())
}

func TestWeightCommandStructure(t *testing.T) {
	cmd := NewRootCommand()

	logCmd, _, err := cmd.Find([]string{"weight", "log"})
	require.NoError(t, err)
	assert.Equal(t, "log", logCmd.Name())

	historyCmd, _, err := cmd.Find([]string{"weight", "history"})
	require.NoError(t, err)
	require.NotNil(t, historyCmd.Flags().Lookup("limit"))
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	bindFlag := serveCmd.Flags().Lookup("bind")
	require.NotNil(t, bindFlag)
	assert.Equal(t, "127.0.0.1:5001", bindFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
