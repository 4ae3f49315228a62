//go:build windows

package view

import (
	"errors"

	"github.com/lxn/walk"
	d "github.com/lxn/walk/declarative"

	"reactivos/internal/service/reactive"
	"reactivos/internal/ui/controller"
	"reactivos/internal/ui/view/dialogs"
	"reactivos/pkg/tagctl"
)

// MainWindowView отвечает за отображение главного окна и обработку пользовательских событий.
type MainWindowView struct {
	mw               *walk.MainWindow
	mainCtrl         *controller.MainController
	opsCtrl          *controller.OperationsController
	addrCombo        *walk.ComboBox
	actionBtn        *walk.PushButton
	clearProfilesBtn *walk.PushButton
	monitorView      *walk.TextEdit
	programBtn       *walk.PushButton
	altaBtn          *walk.PushButton
	usoBtn           *walk.PushButton
	bajaBtn          *walk.PushButton
	statusLabel      *walk.Label
}

// NewMainWindowView создает новый экземпляр MainWindowView с переданными контроллерами.
func NewMainWindowView(mainCtrl *controller.MainController, opsCtrl *controller.OperationsController) *MainWindowView {
	return &MainWindowView{
		mainCtrl: mainCtrl,
		opsCtrl:  opsCtrl,
	}
}

// Create создает и инициализирует главное окно приложения.
func (w *MainWindowView) Create() error {
	w.mainCtrl.SetOnUpdate(w.updateUI)
	w.mainCtrl.Monitor().SetOnChange(w.updateMonitor)
	w.opsCtrl.SetOnResult(w.onResult)

	err := d.MainWindow{
		AssignTo: &w.mw,
		Title:    "Sistema de Gestión de Reactivos",
		Size:     d.Size{Width: 680, Height: 540},
		MinSize:  d.Size{Width: 560, Height: 480},
		Layout:   d.VBox{Margins: d.Margins{Left: 8, Top: 8, Right: 8, Bottom: 8}, Spacing: 6},
		Children: []d.Widget{
			// --- Подключение ---
			d.GroupBox{
				Title:  "Establece Conexión con el Sistema",
				Layout: d.HBox{Margins: d.Margins{Left: 5, Top: 5, Right: 5, Bottom: 5}, Spacing: 5},
				Children: []d.Widget{
					d.ComboBox{
						AssignTo:              &w.addrCombo,
						Editable:              true,
						MinSize:               d.Size{Width: 220},
						ToolTipText:           "COMx o COMx:Baud. Ejemplos: COM8, COM8:115200",
						OnCurrentIndexChanged: w.syncConnectionString,
						OnTextChanged:         w.syncConnectionString,
					},
					d.PushButton{
						AssignTo:  &w.actionBtn,
						Text:      "Conectar",
						OnClicked: w.onActionBtnClicked,
						MinSize:   d.Size{Width: 90},
					},
					d.PushButton{
						AssignTo:    &w.clearProfilesBtn,
						Text:        "🗑️",
						MaxSize:     d.Size{Width: 30},
						ToolTipText: "Borrar perfiles guardados",
						OnClicked:   w.onClearProfiles,
					},
					d.HSpacer{},
				},
			},
			// --- Монитор состояния ---
			d.TextEdit{
				AssignTo: &w.monitorView,
				ReadOnly: true,
				VScroll:  true,
				Font:     d.Font{Family: "Consolas", PointSize: 9},
				MinSize:  d.Size{Height: 260},
			},
			// --- Операции ---
			d.Label{Text: "Nuevo Reactivo:"},
			d.PushButton{
				AssignTo:  &w.programBtn,
				Text:      "Programar Etiqueta",
				OnClicked: w.onProgramTag,
			},
			d.Label{Text: "Opciones de Registro:"},
			d.Composite{
				Layout: d.HBox{MarginsZero: true, Spacing: 5},
				Children: []d.Widget{
					d.PushButton{AssignTo: &w.altaBtn, Text: "Registrar Alta", OnClicked: w.operation(w.opsCtrl.RegisterAlta)},
					d.PushButton{AssignTo: &w.usoBtn, Text: "Registrar Uso", OnClicked: w.operation(w.opsCtrl.RegisterUso)},
					d.PushButton{AssignTo: &w.bajaBtn, Text: "Registrar Baja", OnClicked: w.operation(w.opsCtrl.RegisterBaja)},
				},
			},
			d.Label{AssignTo: &w.statusLabel, Text: "Sin conexión"},
		},
	}.Create()
	if err != nil {
		return err
	}

	w.mainCtrl.Initialize()

	w.mw.Closing().Attach(func(canceled *bool, reason walk.CloseReason) {
		w.opsCtrl.Cancel()
		_ = w.mainCtrl.Disconnect()
	})

	return nil
}

// Run запускает главный цикл обработки сообщений окна.
func (w *MainWindowView) Run() {
	w.mw.Run()
}

// updateUI переносит состояние ViewModel в виджеты. Может вызываться из любой горутины.
func (w *MainWindowView) updateUI() {
	if w.mw == nil {
		return
	}
	w.mw.Synchronize(func() {
		vm := w.mainCtrl.ViewModel()

		if len(vm.ConnectionList) > 0 {
			currentText := w.addrCombo.Text()
			w.addrCombo.SetModel(vm.ConnectionList)
			if currentText == "" {
				w.addrCombo.SetText(vm.ConnectionString)
			} else {
				w.addrCombo.SetText(currentText)
			}
		}

		w.actionBtn.SetText(vm.ActionButtonText)
		w.actionBtn.SetEnabled(vm.ActionButtonEnabled)
		w.addrCombo.SetEnabled(vm.ConnectionStringEnabled)
		w.clearProfilesBtn.SetEnabled(vm.ClearProfilesButtonEnabled)
		for _, b := range []*walk.PushButton{w.programBtn, w.altaBtn, w.usoBtn, w.bajaBtn} {
			b.SetEnabled(vm.OperationsEnabled)
		}
		w.statusLabel.SetText(vm.StatusText)
	})
}

// updateMonitor выводит монитор и прокручивает его в конец.
func (w *MainWindowView) updateMonitor() {
	if w.mw == nil {
		return
	}
	w.mw.Synchronize(func() {
		text := w.mainCtrl.Monitor().Text()
		w.monitorView.SetText(text)
		w.monitorView.SetTextSelection(len(text), len(text))
		w.monitorView.ScrollToCaret()
	})
}

// onResult показывает итог операции в диалоге.
func (w *MainWindowView) onResult(res tagctl.Result, msg reactive.Message) {
	if w.mw == nil {
		return
	}
	w.mw.Synchronize(func() {
		icon := walk.MsgBoxIconInformation
		switch msg.Severity {
		case reactive.SeverityWarning:
			icon = walk.MsgBoxIconWarning
		case reactive.SeverityError:
			icon = walk.MsgBoxIconError
		}
		walk.MsgBox(w.mw, msg.Severity.Title(), msg.Text, icon)
	})
}

// onActionBtnClicked подключает или отключает контроллер.
func (w *MainWindowView) onActionBtnClicked() {
	var err error
	if w.mainCtrl.ViewModel().IsConnected {
		err = w.mainCtrl.Disconnect()
	} else {
		err = w.mainCtrl.Connect()
	}
	if err != nil {
		walk.MsgBox(w.mw, "Error", err.Error(), walk.MsgBoxIconError)
	}
}

func (w *MainWindowView) onProgramTag() {
	if err := w.opsCtrl.CanStart(); err != nil {
		w.showError(err)
		return
	}
	ok, err := dialogs.ShowTagDialog(w.mw, w.opsCtrl.TagViewModel())
	if err != nil {
		walk.MsgBox(w.mw, "Error", err.Error(), walk.MsgBoxIconError)
		return
	}
	if ok {
		w.showError(w.opsCtrl.ProgramTag())
	}
}

// operation оборачивает запуск операции для кнопки.
func (w *MainWindowView) operation(start func() error) walk.EventHandler {
	return func() {
		w.showError(start())
	}
}

func (w *MainWindowView) showError(err error) {
	if err == nil {
		return
	}
	var ve *controller.ValidationError
	if errors.As(err, &ve) {
		walk.MsgBox(w.mw, "Advertencia", ve.Message, walk.MsgBoxIconWarning)
		return
	}
	walk.MsgBox(w.mw, "Error", err.Error(), walk.MsgBoxIconError)
}

func (w *MainWindowView) syncConnectionString() {
	w.mainCtrl.SetConnectionString(w.addrCombo.Text())
}

func (w *MainWindowView) onClearProfiles() {
	if walk.MsgBox(w.mw, "Confirmación", "¿Borrar todos los perfiles guardados?", walk.MsgBoxYesNo|walk.MsgBoxIconQuestion) != walk.DlgCmdYes {
		return
	}
	if err := w.mainCtrl.ClearProfiles(); err != nil {
		walk.MsgBox(w.mw, "Error", err.Error(), walk.MsgBoxIconError)
	}
}
