package stack

import (
	"github.com/outpostlabs/outpost/pkg/topology"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Exported stack output names.
const (
	OutputInstancePublicIP = "instance_public_ip"
	OutputSSHCommand       = "ssh_command"
)

// Program returns the Pulumi program declaring the sandbox topology. The
// program is a single pass of resource declarations; ordering and convergence
// are the engine's concern.
func Program(spec topology.Spec, publicKey []byte) pulumi.RunFunc {
	return func(ctx *pulumi.Context) error {
		net := spec.Network

		vpc, err := ec2.NewVpc(ctx, net.VpcName, &ec2.VpcArgs{
			CidrBlock:          pulumi.String(net.VpcCidr),
			EnableDnsHostnames: pulumi.Bool(true),
			EnableDnsSupport:   pulumi.Bool(true),
			Tags:               resourceTags(spec, net.VpcName),
		})
		if err != nil {
			return err
		}

		igw, err := ec2.NewInternetGateway(ctx, net.GatewayName, &ec2.InternetGatewayArgs{
			VpcId: vpc.ID(),
			Tags:  resourceTags(spec, net.GatewayName),
		})
		if err != nil {
			return err
		}

		zone := net.AvailabilityZone
		if zone == "" {
			zones, err := aws.GetAvailabilityZones(ctx, nil)
			if err != nil {
				return err
			}
			zone = zones.Names[0]
		}

		subnet, err := ec2.NewSubnet(ctx, net.SubnetName, &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(net.SubnetCidr),
			MapPublicIpOnLaunch: pulumi.Bool(true),
			AvailabilityZone:    pulumi.String(zone),
			Tags:                resourceTags(spec, net.SubnetName),
		})
		if err != nil {
			return err
		}

		routes := ec2.RouteTableRouteArray{}
		for _, r := range net.Routes {
			routes = append(routes, &ec2.RouteTableRouteArgs{
				CidrBlock: pulumi.String(r.Destination),
				GatewayId: igw.ID(),
			})
		}
		routeTable, err := ec2.NewRouteTable(ctx, net.RouteTableName, &ec2.RouteTableArgs{
			VpcId:  vpc.ID(),
			Routes: routes,
			Tags:   resourceTags(spec, net.RouteTableName),
		})
		if err != nil {
			return err
		}

		_, err = ec2.NewRouteTableAssociation(ctx, net.RouteTableName+"-association", &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: routeTable.ID(),
		})
		if err != nil {
			return err
		}

		securityGroup, err := ec2.NewSecurityGroup(ctx, spec.Firewall.Name, &ec2.SecurityGroupArgs{
			Description: pulumi.String(spec.Firewall.Description),
			VpcId:       vpc.ID(),
			Ingress:     ingressRules(spec.Firewall.Ingress),
			Egress:      egressRules(spec.Firewall.Egress),
			Tags:        resourceTags(spec, spec.Firewall.Name),
		})
		if err != nil {
			return err
		}

		machine := spec.Machine

		keyPair, err := ec2.NewKeyPair(ctx, machine.KeyPairName, &ec2.KeyPairArgs{
			KeyName:   pulumi.String(machine.KeyPairName),
			PublicKey: pulumi.String(string(publicKey)),
		})
		if err != nil {
			return err
		}

		instance, err := ec2.NewInstance(ctx, machine.Name, &ec2.InstanceArgs{
			InstanceType:        pulumi.String(machine.InstanceType),
			Ami:                 pulumi.String(machine.Ami),
			SubnetId:            subnet.ID(),
			VpcSecurityGroupIds: pulumi.StringArray{securityGroup.ID()},
			KeyName:             keyPair.KeyName,
			Tags:                resourceTags(spec, machine.Name),
		})
		if err != nil {
			return err
		}

		ctx.Export(OutputInstancePublicIP, instance.PublicIp)
		ctx.Export(OutputSSHCommand, sshCommandOutput(spec, instance.PublicIp))

		return nil
	}
}

func sshCommandOutput(spec topology.Spec, ip pulumi.StringInput) pulumi.StringOutput {
	return ip.ToStringOutput().ApplyT(func(addr string) string {
		return topology.SSHCommand(spec.KeyDir, spec.Machine.SSHUser, addr)
	}).(pulumi.StringOutput)
}

func resourceTags(spec topology.Spec, name string) pulumi.StringMap {
	tags := pulumi.StringMap{"Name": pulumi.String(name)}
	for k, v := range spec.Tags {
		tags[k] = pulumi.String(v)
	}
	return tags
}

func ingressRules(rules []topology.Rule) ec2.SecurityGroupIngressArray {
	out := ec2.SecurityGroupIngressArray{}
	for _, r := range rules {
		out = append(out, &ec2.SecurityGroupIngressArgs{
			Description: pulumi.String(r.Description),
			Protocol:    pulumi.String(r.Protocol),
			FromPort:    pulumi.Int(r.FromPort),
			ToPort:      pulumi.Int(r.ToPort),
			CidrBlocks:  toStringArray(r.Cidrs),
		})
	}
	return out
}

func egressRules(rules []topology.Rule) ec2.SecurityGroupEgressArray {
	out := ec2.SecurityGroupEgressArray{}
	for _, r := range rules {
		out = append(out, &ec2.SecurityGroupEgressArgs{
			Protocol:   pulumi.String(r.Protocol),
			FromPort:   pulumi.Int(r.FromPort),
			ToPort:     pulumi.Int(r.ToPort),
			CidrBlocks: toStringArray(r.Cidrs),
		})
	}
	return out
}

func toStringArray(values []string) pulumi.StringArray {
	out := pulumi.StringArray{}
	for _, v := range values {
		out = append(out, pulumi.String(v))
	}
	return out
}
