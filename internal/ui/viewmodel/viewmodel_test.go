package viewmodel

import (
	"reflect"
	"testing"
)

func TestMainViewModelState(t *testing.T) {
	vm := NewMainViewModel()
	if vm.ActionButtonText != "Conectar" || vm.ActionButtonEnabled || vm.OperationsEnabled {
		t.Errorf("initial = %+v", vm)
	}

	vm.ConnectionString = "COM8"
	vm.UpdateUIState()
	if !vm.ActionButtonEnabled {
		t.Error("connect button disabled with a port selected")
	}

	vm.IsConnected = true
	vm.UpdateUIState()
	if vm.ActionButtonText != "Desconectar" || !vm.OperationsEnabled || vm.ConnectionStringEnabled {
		t.Errorf("connected = %+v", vm)
	}

	vm.Busy = true
	vm.UpdateUIState()
	if vm.OperationsEnabled || vm.ActionButtonEnabled || vm.StatusText != "Operación en curso..." {
		t.Errorf("busy = %+v", vm)
	}
}

func TestTagViewModelRecord(t *testing.T) {
	vm := NewTagViewModel()
	vm.Producto = "  Metanol "
	vm.Lote = "L2024"
	rec := vm.Record()
	if rec.Producto != "Metanol" || rec.Lote != "L2024" {
		t.Errorf("record = %+v", rec)
	}
	vm.Reset()
	if *vm != (TagViewModel{}) {
		t.Errorf("after reset = %+v", vm)
	}
}

func TestMonitor(t *testing.T) {
	m := NewMonitor(3)
	calls := 0
	m.SetOnChange(func() { calls++ })

	for _, l := range []string{"a", "b", "c", "d"} {
		m.Append(l)
	}
	if got := m.Lines(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("lines = %v", got)
	}
	if m.Text() != "b\r\nc\r\nd" {
		t.Errorf("text = %q", m.Text())
	}
	if calls != 4 {
		t.Errorf("onChange calls = %d", calls)
	}
	m.Clear()
	if len(m.Lines()) != 0 || calls != 5 {
		t.Errorf("after clear lines=%v calls=%d", m.Lines(), calls)
	}
}
