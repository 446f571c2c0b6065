// Package topology describes the sandbox network topology as plain data:
// a VPC with a single public subnet, an internet gateway with a default
// route, a firewall admitting SSH, and one instance reachable through it.
//
// Nothing here talks to AWS. The stack package maps a Spec onto Pulumi
// resource declarations; keeping the description as plain structs keeps the
// topology's invariants unit-testable.
package topology

import "fmt"

// AnywhereCidr matches all IPv4 traffic.
const AnywhereCidr = "0.0.0.0/0"

// Spec is the full description of one sandbox deployment.
type Spec struct {
	// KeyDir is the directory holding the SSH key pair files.
	KeyDir   string
	Network  NetworkSpec
	Firewall FirewallSpec
	Machine  MachineSpec
	// Tags are applied to every resource in addition to its Name tag.
	Tags map[string]string
}

type NetworkSpec struct {
	VpcName string
	VpcCidr string

	GatewayName string

	SubnetName string
	SubnetCidr string
	// AvailabilityZone pins the subnet to a zone. Empty means the first
	// zone reported by the provider for the configured region.
	AvailabilityZone string

	RouteTableName string
	// Routes are routed through the internet gateway.
	Routes []RouteSpec
}

type RouteSpec struct {
	Destination string
}

type FirewallSpec struct {
	Name        string
	Description string
	Ingress     []Rule
	Egress      []Rule
}

// Rule is a single stateful firewall rule. Protocol "-1" with ports 0-0
// matches all traffic.
type Rule struct {
	Description string
	Protocol    string
	FromPort    int
	ToPort      int
	Cidrs       []string
}

type MachineSpec struct {
	Name         string
	KeyPairName  string
	InstanceType string
	Ami          string
	SSHUser      string
}

// Default returns the stock sandbox topology: a 10.0.0.0/16 VPC with one
// public /24, SSH open to the world, and a single Ubuntu t2.micro.
func Default() Spec {
	return Spec{
		KeyDir: ".",
		Network: NetworkSpec{
			VpcName:        "my-vpc",
			VpcCidr:        "10.0.0.0/16",
			GatewayName:    "my-igw",
			SubnetName:     "public-subnet",
			SubnetCidr:     "10.0.1.0/24",
			RouteTableName: "public-route-table",
			Routes:         []RouteSpec{{Destination: AnywhereCidr}},
		},
		Firewall: FirewallSpec{
			Name:        "ssh-security-group",
			Description: "Allow SSH access",
			Ingress: []Rule{
				{
					Description: "SSH from anywhere",
					Protocol:    "tcp",
					FromPort:    22,
					ToPort:      22,
					Cidrs:       []string{AnywhereCidr},
				},
			},
			Egress: []Rule{
				{
					Protocol: "-1",
					FromPort: 0,
					ToPort:   0,
					Cidrs:    []string{AnywhereCidr},
				},
			},
		},
		Machine: MachineSpec{
			Name:         "my-instance",
			KeyPairName:  "my-key-pair",
			InstanceType: "t2.micro",
			// Ubuntu Server AMI (HVM), SSD Volume Type
			Ami:     "ami-060e277c0d4cce553",
			SSHUser: "ubuntu",
		},
	}
}

// SSHCommand composes the command line for connecting to the instance at ip
// using the private key under keyDir.
func SSHCommand(keyDir string, user string, ip string) string {
	return fmt.Sprintf("ssh -i %s/id_rsa_pulumi %s@%s", keyDir, user, ip)
}
