package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoutesEverythingThroughGateway(t *testing.T) {
	assert := assert.New(t)

	spec := Default()
	require.Len(t, spec.Network.Routes, 1)
	assert.Equal(AnywhereCidr, spec.Network.Routes[0].Destination)
}

func TestDefaultFirewallAllowsSSHOnly(t *testing.T) {
	assert := assert.New(t)

	fw := Default().Firewall

	require.Len(t, fw.Ingress, 1)
	ssh := fw.Ingress[0]
	assert.Equal("tcp", ssh.Protocol)
	assert.Equal(22, ssh.FromPort)
	assert.Equal(22, ssh.ToPort)
	assert.Equal([]string{AnywhereCidr}, ssh.Cidrs)

	require.Len(t, fw.Egress, 1)
	all := fw.Egress[0]
	assert.Equal("-1", all.Protocol)
	assert.Equal(0, all.FromPort)
	assert.Equal(0, all.ToPort)
	assert.Equal([]string{AnywhereCidr}, all.Cidrs)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestSSHCommand(t *testing.T) {
	cases := []struct {
		name     string
		keyDir   string
		user     string
		ip       string
		expected string
	}{
		{
			name:     "working directory key",
			keyDir:   "/home/dev/sandbox",
			user:     "ubuntu",
			ip:       "54.12.34.56",
			expected: "ssh -i /home/dev/sandbox/id_rsa_pulumi ubuntu@54.12.34.56",
		},
		{
			name:     "relative key dir",
			keyDir:   ".",
			user:     "ubuntu",
			ip:       "3.3.3.3",
			expected: "ssh -i ./id_rsa_pulumi ubuntu@3.3.3.3",
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SSHCommand(tt.keyDir, tt.user, tt.ip))
		})
	}
}
