package workflow

import "sort"

const ConfigureDHCPWorkflowName = "configure-dhcp"

// ConfigureDHCPParam names the objects whose DHCP configuration changed.
// Deleted rows are reported through their parent.
type ConfigureDHCPParam struct {
	SystemIDs       []string `json:"system_ids,omitempty"`
	VLANIDs         []int    `json:"vlan_ids,omitempty"`
	SubnetIDs       []int    `json:"subnet_ids,omitempty"`
	StaticIPAddrIDs []int    `json:"static_ip_addr_ids,omitempty"`
	IPRangeIDs      []int    `json:"ip_range_ids,omitempty"`
	ReservedIPIDs   []int    `json:"reserved_ip_ids,omitempty"`
}

// MergeConfigureDHCPParam returns the sorted union of both parameters.
func MergeConfigureDHCPParam(prev, next ConfigureDHCPParam) ConfigureDHCPParam {
	return ConfigureDHCPParam{
		SystemIDs:       union(prev.SystemIDs, next.SystemIDs),
		VLANIDs:         union(prev.VLANIDs, next.VLANIDs),
		SubnetIDs:       union(prev.SubnetIDs, next.SubnetIDs),
		StaticIPAddrIDs: union(prev.StaticIPAddrIDs, next.StaticIPAddrIDs),
		IPRangeIDs:      union(prev.IPRangeIDs, next.IPRangeIDs),
		ReservedIPIDs:   union(prev.ReservedIPIDs, next.ReservedIPIDs),
	}
}

func union[E int | string](a, b []E) []E {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[E]struct{}, len(a)+len(b))
	out := make([]E, 0, len(a)+len(b))
	for _, s := range [][]E{a, b} {
		for _, v := range s {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ConfigureDHCP registers a non-blocking configure-dhcp call on r.
func ConfigureDHCP(r Registrar, param ConfigureDHCPParam) {
	r.RegisterOrUpdateWorkflowCall(ConfigureDHCPWorkflowName, param, Merge(MergeConfigureDHCPParam), false)
}
