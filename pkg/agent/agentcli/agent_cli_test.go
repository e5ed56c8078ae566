package agentcli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDecode(t *testing.T, args ...string) string {
	t.Helper()
	cmd := NewDecode()
	out := bytes.NewBuffer(nil)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestDecodeCommand(t *testing.T) {
	assert.Equal(t, "0x0c/0xb6 press\n", runDecode(t, "03000b2100"))
	assert.Equal(t, "0x0c/0xb6 release\n", runDecode(t, "03000b2101"))
	assert.Equal(t, "not handled\n", runDecode(t, "010203"))
	assert.Equal(t, "not handled\n", runDecode(t, "--variant", "profile", "0300fb0000"))
	assert.Equal(t, "0x07/0x6c press\n", runDecode(t, "--variant", "fx", "0300fb0000"))
}

func TestDecodeCommandInvalidInput(t *testing.T) {
	cmd := NewDecode()
	cmd.SetOut(bytes.NewBuffer(nil))
	cmd.SetErr(bytes.NewBuffer(nil))
	cmd.SetArgs([]string{"zz"})
	assert.Error(t, cmd.Execute())

	cmd = NewDecode()
	cmd.SetOut(bytes.NewBuffer(nil))
	cmd.SetErr(bytes.NewBuffer(nil))
	cmd.SetArgs([]string{"--variant", "bogus", "03000b2100"})
	assert.Error(t, cmd.Execute())
}
