//go:build windows

package view

import (
	"reactivos/internal/ui/controller"
)

// Run запускает графическое приложение
func Run(mainController *controller.MainController, opsController *controller.OperationsController) error {
	mw := NewMainWindowView(mainController, opsController)

	if err := mw.Create(); err != nil {
		return err
	}

	mw.Run()
	return nil
}
