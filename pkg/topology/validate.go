package topology

import (
	"fmt"
	"net"
	"strings"
)

func (s Spec) Validate() error {
	if s.KeyDir == "" {
		return fmt.Errorf("key directory must not be empty")
	}
	if err := s.Network.Validate(); err != nil {
		return err
	}
	if err := s.Firewall.Validate(); err != nil {
		return err
	}
	return s.Machine.Validate()
}

func (n NetworkSpec) Validate() error {
	_, vpcNet, err := net.ParseCIDR(n.VpcCidr)
	if err != nil {
		return fmt.Errorf("invalid VPC CIDR %q: %w", n.VpcCidr, err)
	}
	subnetIP, subnetNet, err := net.ParseCIDR(n.SubnetCidr)
	if err != nil {
		return fmt.Errorf("invalid subnet CIDR %q: %w", n.SubnetCidr, err)
	}
	vpcOnes, _ := vpcNet.Mask.Size()
	subnetOnes, _ := subnetNet.Mask.Size()
	if !vpcNet.Contains(subnetIP) || subnetOnes < vpcOnes {
		return fmt.Errorf("subnet %s is not within VPC range %s", n.SubnetCidr, n.VpcCidr)
	}
	if len(n.Routes) == 0 {
		return fmt.Errorf("route table %s has no routes, the subnet would be unreachable", n.RouteTableName)
	}
	for _, r := range n.Routes {
		if _, _, err := net.ParseCIDR(r.Destination); err != nil {
			return fmt.Errorf("invalid route destination %q: %w", r.Destination, err)
		}
	}
	return nil
}

func (f FirewallSpec) Validate() error {
	for _, r := range append(append([]Rule{}, f.Ingress...), f.Egress...) {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("firewall %s: %w", f.Name, err)
		}
	}
	return nil
}

func (r Rule) Validate() error {
	switch r.Protocol {
	case "tcp", "udp", "icmp", "-1":
	default:
		return fmt.Errorf("unsupported protocol %q", r.Protocol)
	}
	if r.FromPort < 0 || r.ToPort > 65535 || r.FromPort > r.ToPort {
		return fmt.Errorf("invalid port range %d-%d", r.FromPort, r.ToPort)
	}
	if len(r.Cidrs) == 0 {
		return fmt.Errorf("rule %q has no CIDR blocks", r.Description)
	}
	for _, c := range r.Cidrs {
		if _, _, err := net.ParseCIDR(c); err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", c, err)
		}
	}
	return nil
}

func (m MachineSpec) Validate() error {
	if m.InstanceType == "" {
		return fmt.Errorf("instance type must not be empty")
	}
	if !strings.HasPrefix(m.Ami, "ami-") {
		return fmt.Errorf("invalid AMI id %q", m.Ami)
	}
	if m.SSHUser == "" {
		return fmt.Errorf("SSH user must not be empty")
	}
	return nil
}
