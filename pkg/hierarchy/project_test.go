package hierarchy_test

import (
	"context"
	"testing"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/hierarchy"
	"github.com/tracewire/schemsync/pkg/reconciler"
)

// failingReconciler fails for one designated sheet's target and succeeds
// everywhere else.
type failingReconciler struct {
	inner   reconciler.Reconciler
	poison  circuit.Reference
	failErr error
}

func (f *failingReconciler) Reconcile(ctx context.Context, snapshot *circuit.Snapshot, target *circuit.Circuit) (*reconciler.Result, error) {
	for _, comp := range target.Components {
		if comp.Reference == f.poison {
			return nil, f.failErr
		}
	}
	return f.inner.Reconcile(ctx, snapshot, target)
}

func targetOf(refs ...circuit.Reference) *circuit.Circuit {
	c := &circuit.Circuit{}
	for _, ref := range refs {
		c.Components = append(c.Components, circuit.NewComponent(ref, "Device:R").MustBuild())
	}
	return c
}

func TestProjectReconcileAllSheets(t *testing.T) {
	top, power, sensors, _, comms := buildTree()

	project := hierarchy.NewProject(top)
	project.SetCircuit(top, &hierarchy.SheetCircuit{Target: targetOf("R1")})
	project.SetCircuit(power, &hierarchy.SheetCircuit{Target: targetOf("R2")})
	project.SetCircuit(sensors, &hierarchy.SheetCircuit{Target: targetOf("R3")})
	project.SetCircuit(comms, &hierarchy.SheetCircuit{Target: targetOf("R4")})

	rec, err := reconciler.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := hierarchy.Reconcile(context.Background(), project, rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Sheets) != 4 {
		t.Fatalf("expected 4 sheet results, got %d", len(result.Sheets))
	}
	for _, sr := range result.Sheets {
		if sr.Err != nil {
			t.Errorf("sheet %s failed: %v", sr.Sheet.Path(), sr.Err)
		}
	}
	if result.Report.Added != 4 {
		t.Errorf("every component is new, expected 4 additions, got %d", result.Report.Added)
	}
}

func TestProjectReconcileIsolatesFailures(t *testing.T) {
	top, power, sensors, imu, comms := buildTree()

	project := hierarchy.NewProject(top)
	project.SetCircuit(power, &hierarchy.SheetCircuit{Target: targetOf("R1")})
	project.SetCircuit(sensors, &hierarchy.SheetCircuit{Target: targetOf("POISON")})
	project.SetCircuit(imu, &hierarchy.SheetCircuit{Target: targetOf("R3")})
	project.SetCircuit(comms, &hierarchy.SheetCircuit{Target: targetOf("R4")})

	inner, err := reconciler.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rec := &failingReconciler{
		inner:   inner,
		poison:  "POISON",
		failErr: errors.New("boom"),
	}

	result, err := hierarchy.Reconcile(context.Background(), project, rec)
	if err != nil {
		t.Fatalf("per-sheet failures must not fail the project: %v", err)
	}

	var failed, succeeded int
	for _, sr := range result.Sheets {
		if sr.Err != nil {
			failed++
			var sheetErr *errors.SheetError
			if !errors.As(sr.Err, &sheetErr) {
				t.Errorf("failure should be wrapped as a sheet error, got %v", sr.Err)
			} else if sheetErr.Sheet != "top/sensors" {
				t.Errorf("failed sheet %s, want top/sensors", sheetErr.Sheet)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 {
		t.Errorf("expected exactly one failed sheet, got %d", failed)
	}
	if succeeded != 3 {
		t.Errorf("siblings and even children of the failed sheet should complete, got %d", succeeded)
	}

	if result.Report.Failed != 1 {
		t.Errorf("report should count 1 failed sheet, got %d", result.Report.Failed)
	}
	if result.Errs() == nil {
		t.Error("Errs should surface the per-sheet failure")
	}
	if result.IsNoop() {
		t.Error("a project with failures is not a no-op")
	}
}

func TestProjectReconcileMissingTarget(t *testing.T) {
	top, power, _, _, _ := buildTree()

	project := hierarchy.NewProject(top)
	project.SetCircuit(power, &hierarchy.SheetCircuit{})

	rec, err := reconciler.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := hierarchy.Reconcile(context.Background(), project, rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Sheets) != 1 {
		t.Fatalf("expected 1 sheet result, got %d", len(result.Sheets))
	}
	if result.Sheets[0].Err == nil {
		t.Error("sheet without a target should fail")
	}
}

func TestProjectReconcileStructuralError(t *testing.T) {
	top, power, _, _, _ := buildTree()
	orphan := hierarchy.NewSheet("orphan")

	project := hierarchy.NewProject(top)
	project.SetCircuit(power, &hierarchy.SheetCircuit{
		Target: targetOf("R1"),
		Nets:   nets("BAD"),
	})
	project.SetCircuit(orphan, &hierarchy.SheetCircuit{Nets: nets("BAD")})

	rec, err := reconciler.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := hierarchy.Reconcile(context.Background(), project, rec)
	if err == nil {
		t.Fatal("disconnected net reference should surface a structural error")
	}
	if !errors.IsStructural(err) {
		t.Errorf("expected structural error, got %v", err)
	}

	// The in-tree sheet still reconciled before the error was returned
	if len(result.Sheets) != 1 || result.Sheets[0].Err != nil {
		t.Error("unaffected sheets should complete before the structural error is returned")
	}
}

func TestProjectReportSummary(t *testing.T) {
	top, power, _, _, _ := buildTree()

	project := hierarchy.NewProject(top)
	project.SetCircuit(power, &hierarchy.SheetCircuit{Target: targetOf("R1")})

	rec, err := reconciler.New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := hierarchy.Reconcile(context.Background(), project, rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.Report.Summary() == "" {
		t.Error("summary should not be empty")
	}
	if len(result.Report.Lines) != 1 || result.Report.Lines[0].Sheet != "top/power" {
		t.Errorf("per-sheet breakdown off: %+v", result.Report.Lines)
	}
}
