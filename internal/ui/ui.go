//go:build windows

package ui

import (
	"reactivos/internal/ui/controller"
	"reactivos/internal/ui/view"
)

// Run запускает графическое приложение с переданными контроллерами.
func Run(mainCtrl *controller.MainController, opsCtrl *controller.OperationsController) error {
	return view.Run(mainCtrl, opsCtrl)
}
