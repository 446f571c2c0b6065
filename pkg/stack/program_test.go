package stack

import (
	"sync"
	"testing"

	"github.com/outpostlabs/outpost/pkg/topology"
	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mocks records the inputs of every declared resource so the test can assert
// on the declaration without an engine.
type mocks struct {
	mu        sync.Mutex
	resources map[string]map[string]interface{}
}

func newMocks() *mocks {
	return &mocks{resources: make(map[string]map[string]interface{})}
}

func (m *mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.resources[args.Name] = args.Inputs.Mappable()
	m.mu.Unlock()

	outputs := args.Inputs.Mappable()
	if args.TypeToken == "aws:ec2/instance:Instance" {
		outputs["publicIp"] = "203.0.113.10"
	}
	return args.Name + "_id", resource.NewPropertyMapFromMap(outputs), nil
}

func (m *mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	if args.Token == "aws:index/getAvailabilityZones:getAvailabilityZones" {
		return resource.NewPropertyMapFromMap(map[string]interface{}{
			"names": []string{"us-east-1a", "us-east-1b"},
		}), nil
	}
	return resource.PropertyMap{}, nil
}

func (m *mocks) inputs(t *testing.T, name string) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	inputs, ok := m.resources[name]
	require.True(t, ok, "resource %s was not declared", name)
	return inputs
}

func runProgram(t *testing.T, spec topology.Spec, publicKey []byte) *mocks {
	t.Helper()
	m := newMocks()
	err := pulumi.RunErr(Program(spec, publicKey), pulumi.WithMocks("outpost", "dev", m))
	require.NoError(t, err)
	return m
}

func TestProgramDeclaresTopology(t *testing.T) {
	assert := assert.New(t)

	spec := topology.Default()
	spec.Network.AvailabilityZone = "us-east-1a"
	publicKey := []byte("ssh-rsa AAAAB3Nza test-key\n")

	m := runProgram(t, spec, publicKey)

	vpc := m.inputs(t, "my-vpc")
	assert.Equal("10.0.0.0/16", vpc["cidrBlock"])
	assert.Equal(true, vpc["enableDnsHostnames"])
	assert.Equal(true, vpc["enableDnsSupport"])

	subnet := m.inputs(t, "public-subnet")
	assert.Equal("10.0.1.0/24", subnet["cidrBlock"])
	assert.Equal(true, subnet["mapPublicIpOnLaunch"])
	assert.Equal("us-east-1a", subnet["availabilityZone"])

	// Exactly one route, everything through the gateway.
	rt := m.inputs(t, "public-route-table")
	routes, ok := rt["routes"].([]interface{})
	require.True(t, ok)
	require.Len(t, routes, 1)
	route := routes[0].(map[string]interface{})
	assert.Equal("0.0.0.0/0", route["cidrBlock"])
	assert.Equal("my-igw_id", route["gatewayId"])

	assoc := m.inputs(t, "public-route-table-association")
	assert.Equal("public-subnet_id", assoc["subnetId"])
	assert.Equal("public-route-table_id", assoc["routeTableId"])

	// SSH in from anywhere, everything out.
	sg := m.inputs(t, "ssh-security-group")
	ingress, ok := sg["ingress"].([]interface{})
	require.True(t, ok)
	require.Len(t, ingress, 1)
	ssh := ingress[0].(map[string]interface{})
	assert.Equal("tcp", ssh["protocol"])
	assert.Equal(float64(22), ssh["fromPort"])
	assert.Equal(float64(22), ssh["toPort"])
	assert.Equal([]interface{}{"0.0.0.0/0"}, ssh["cidrBlocks"])

	egress, ok := sg["egress"].([]interface{})
	require.True(t, ok)
	require.Len(t, egress, 1)
	all := egress[0].(map[string]interface{})
	assert.Equal("-1", all["protocol"])
	assert.Equal(float64(0), all["fromPort"])
	assert.Equal(float64(0), all["toPort"])

	// The uploaded key is the file content, byte for byte.
	keyPair := m.inputs(t, "my-key-pair")
	assert.Equal(string(publicKey), keyPair["publicKey"])
	assert.Equal("my-key-pair", keyPair["keyName"])

	instance := m.inputs(t, "my-instance")
	assert.Equal("t2.micro", instance["instanceType"])
	assert.Equal("ami-060e277c0d4cce553", instance["ami"])
	assert.Equal("public-subnet_id", instance["subnetId"])
	assert.Equal([]interface{}{"ssh-security-group_id"}, instance["vpcSecurityGroupIds"])
}

func TestSSHCommandExportMatchesOfflineRendering(t *testing.T) {
	spec := topology.Default()

	var got string
	var wg sync.WaitGroup
	wg.Add(1)
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		sshCommandOutput(spec, pulumi.String("203.0.113.10")).ApplyT(func(v string) string {
			got = v
			wg.Done()
			return v
		})
		return nil
	}, pulumi.WithMocks("outpost", "dev", newMocks()))
	require.NoError(t, err)
	wg.Wait()

	assert.Equal(t, topology.SSHCommand(spec.KeyDir, spec.Machine.SSHUser, "203.0.113.10"), got)
	assert.Equal(t, "ssh -i ./id_rsa_pulumi ubuntu@203.0.113.10", got)
}

func TestProgramDefaultsToFirstAvailabilityZone(t *testing.T) {
	spec := topology.Default()
	require.Empty(t, spec.Network.AvailabilityZone)

	m := runProgram(t, spec, []byte("ssh-rsa AAAA test"))

	subnet := m.inputs(t, "public-subnet")
	assert.Equal(t, "us-east-1a", subnet["availabilityZone"])
}

func TestProgramAppliesExtraTags(t *testing.T) {
	spec := topology.Default()
	spec.Network.AvailabilityZone = "us-east-1a"
	spec.Tags = map[string]string{"team": "platform"}

	m := runProgram(t, spec, []byte("ssh-rsa AAAA test"))

	vpc := m.inputs(t, "my-vpc")
	tags, ok := vpc["tags"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "my-vpc", tags["Name"])
	assert.Equal(t, "platform", tags["team"])
}
