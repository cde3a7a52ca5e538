package hierarchy_test

import (
	"testing"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/hierarchy"
)

func nets(names ...string) []circuit.NetName {
	out := make([]circuit.NetName, len(names))
	for i, n := range names {
		out[i] = circuit.NetName(n)
	}
	return out
}

func hasNet(list []circuit.NetName, name circuit.NetName) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func TestResolveScopesLocal(t *testing.T) {
	top, power, _, _, _ := buildTree()

	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		power: nets("VREG_FB"),
	})
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	if !hasNet(scopes[power].Local, "VREG_FB") {
		t.Error("net referenced on one sheet should be local to it")
	}
	if hasNet(scopes[top].Shared, "VREG_FB") {
		t.Error("local net should not be elevated to an ancestor")
	}
}

func TestResolveScopesSharedAtLCA(t *testing.T) {
	top, power, sensors, imu, _ := buildTree()

	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		power: nets("VCC_3V3"),
		imu:   nets("VCC_3V3"),
		// Net shared within one subtree stays at that subtree's root
		sensors: nets("SPI_CLK"),
	})
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	if !hasNet(scopes[top].Shared, "VCC_3V3") {
		t.Error("VCC_3V3 spans power and imu, so it must be declared at top")
	}
	if hasNet(scopes[sensors].Shared, "VCC_3V3") {
		t.Error("VCC_3V3 must not be declared below its LCA")
	}
	if !hasNet(scopes[sensors].Local, "SPI_CLK") {
		t.Error("SPI_CLK is referenced only on sensors")
	}
}

func TestResolveScopesSubtreeLCA(t *testing.T) {
	top, _, sensors, imu, _ := buildTree()

	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		sensors: nets("IMU_INT"),
		imu:     nets("IMU_INT"),
	})
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	if !hasNet(scopes[sensors].Shared, "IMU_INT") {
		t.Error("IMU_INT's LCA is sensors, not top")
	}
	if hasNet(scopes[top].Shared, "IMU_INT") {
		t.Error("IMU_INT must not be elevated above its LCA")
	}
}

func TestResolveScopesPassThrough(t *testing.T) {
	top, power, _, imu, _ := buildTree()

	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		power: nets("VCC_3V3"),
		imu:   nets("VCC_3V3"),
	})
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	// sensors sits strictly between the LCA (top) and imu
	sensors, _ := top.Find("sensors")
	if !hasNet(scopes[sensors].PassThrough, "VCC_3V3") {
		t.Error("sensors must forward VCC_3V3 without declaring it")
	}
	if hasNet(scopes[top].PassThrough, "VCC_3V3") {
		t.Error("the declaring sheet is not a pass-through")
	}
	if hasNet(scopes[power].PassThrough, "VCC_3V3") {
		t.Error("a referencing leaf is not a pass-through")
	}
}

func TestResolveScopesDeclaringSheetReferencesNet(t *testing.T) {
	top, _, sensors, imu, _ := buildTree()

	// The LCA sheet itself references the net. It declares the net;
	// nothing above it forwards anything.
	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		sensors: nets("IMU_CS"),
		imu:     nets("IMU_CS"),
	})
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	if !hasNet(scopes[sensors].Shared, "IMU_CS") {
		t.Error("IMU_CS must be declared at sensors")
	}
	if hasNet(scopes[top].PassThrough, "IMU_CS") {
		t.Error("top is above the LCA and must not forward IMU_CS")
	}
	if hasNet(scopes[sensors].PassThrough, "IMU_CS") {
		t.Error("the declaring sheet is not a pass-through")
	}
}

func TestResolveScopesDeepDeclaringChain(t *testing.T) {
	root := hierarchy.NewSheet("root")
	power := root.AddChild("power")
	regulator := power.AddChild("regulator")

	scopes, err := hierarchy.ResolveScopes(root, map[*hierarchy.Sheet][]circuit.NetName{
		power:     nets("VOUT"),
		regulator: nets("VOUT"),
	})
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	if !hasNet(scopes[power].Shared, "VOUT") {
		t.Error("VOUT must be declared at power")
	}
	if hasNet(scopes[root].PassThrough, "VOUT") {
		t.Error("root is above the LCA and must not forward VOUT")
	}
}

func TestResolveScopesForeignCommonAncestor(t *testing.T) {
	top, power, _, _, _ := buildTree()

	// Two sheets share an ancestor, but in a tree the resolver was not
	// given. Their nets cannot be scoped; the run must not panic.
	foreign := hierarchy.NewSheet("foreign")
	left := foreign.AddChild("left")
	right := foreign.AddChild("right")

	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		power: nets("GOOD"),
		left:  nets("STRAY"),
		right: nets("STRAY"),
	})

	if err == nil {
		t.Fatal("net scoped to a foreign tree should be a structural error")
	}
	if !errors.IsStructural(err) {
		t.Errorf("expected structural error, got %v", err)
	}
	if !hasNet(scopes[power].Local, "GOOD") {
		t.Error("in-tree nets should still resolve")
	}
}

func TestResolveScopesDisconnected(t *testing.T) {
	top, power, _, _, _ := buildTree()
	orphan := hierarchy.NewSheet("orphan")

	scopes, err := hierarchy.ResolveScopes(top, map[*hierarchy.Sheet][]circuit.NetName{
		power:  nets("GOOD", "BAD"),
		orphan: nets("BAD"),
	})

	if err == nil {
		t.Fatal("net spanning two trees should be a structural error")
	}
	if !errors.IsStructural(err) {
		t.Errorf("expected structural error, got %v", err)
	}

	// Resolution of the unaffected net still completed
	if !hasNet(scopes[power].Local, "GOOD") {
		t.Error("independent nets should still resolve when one net fails")
	}
}

func TestResolveScopesDeterministic(t *testing.T) {
	top, power, _, imu, comms := buildTree()
	declared := map[*hierarchy.Sheet][]circuit.NetName{
		power: nets("VCC", "GND", "EN"),
		imu:   nets("VCC", "GND"),
		comms: nets("EN", "GND"),
	}

	first, err := hierarchy.ResolveScopes(top, declared)
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}
	second, err := hierarchy.ResolveScopes(top, declared)
	if err != nil {
		t.Fatalf("ResolveScopes failed: %v", err)
	}

	for sheet, scope := range first {
		other := second[sheet]
		for i, n := range scope.Shared {
			if other.Shared[i] != n {
				t.Errorf("shared order differs across runs on %s", sheet.Name)
			}
		}
	}
}
