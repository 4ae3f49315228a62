//go:build windows

package dialogs

import (
	"github.com/lxn/walk"
	d "github.com/lxn/walk/declarative"

	"reactivos/internal/ui/viewmodel"
)

// ShowTagDialog открывает модальное окно ввода данных реактива.
// Возвращает true, если пользователь подтвердил ввод; поля переносятся в vm.
func ShowTagDialog(owner walk.Form, vm *viewmodel.TagViewModel) (bool, error) {
	var dlg *walk.Dialog
	var db *walk.DataBinder
	var acceptPB, cancelPB *walk.PushButton

	field := func(label, prop string) []d.Widget {
		return []d.Widget{
			d.Label{Text: label},
			d.LineEdit{Text: d.Bind(prop), MinSize: d.Size{Width: 260}},
		}
	}

	var rows []d.Widget
	rows = append(rows, field("Producto", "Producto")...)
	rows = append(rows, field("Número", "Numero")...)
	rows = append(rows, field("Marca", "Marca")...)
	rows = append(rows, field("Código", "Codigo")...)
	rows = append(rows, field("Presentación", "Presentacion")...)
	rows = append(rows, field("Lote", "Lote")...)
	rows = append(rows, field("Vencimiento", "Vencimiento")...)

	err := d.Dialog{
		AssignTo:      &dlg,
		Title:         "Ingrese los datos del Reactivo",
		MinSize:       d.Size{Width: 420, Height: 320},
		Layout:        d.VBox{},
		DefaultButton: &acceptPB,
		CancelButton:  &cancelPB,
		DataBinder: d.DataBinder{
			AssignTo:   &db,
			Name:       "tagVM",
			DataSource: vm,
		},
		Children: []d.Widget{
			d.Composite{
				Layout:   d.Grid{Columns: 2, Spacing: 5},
				Children: rows,
			},
			d.Composite{
				Layout: d.HBox{Spacing: 6},
				Children: []d.Widget{
					d.HSpacer{},
					d.PushButton{
						AssignTo: &acceptPB,
						Text:     "Guardar",
						OnClicked: func() {
							if err := db.Submit(); err != nil {
								walk.MsgBox(dlg, "Error", err.Error(), walk.MsgBoxIconError)
								return
							}
							dlg.Accept()
						},
					},
					d.PushButton{
						AssignTo:  &cancelPB,
						Text:      "Cancelar",
						OnClicked: func() { dlg.Cancel() },
					},
				},
			},
		},
	}.Create(owner)
	if err != nil {
		return false, err
	}

	return dlg.Run() == walk.DlgCmdOK, nil
}
