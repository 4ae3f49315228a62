package viewmodel

import "strings"

// MainViewModel отвечает за отображение статуса подключения и доступность операций.
type MainViewModel struct {
	// Строка подключения (COMx или COMx:Baud)
	ConnectionString string

	// Список доступных подключений (профили + COM-порты)
	ConnectionList []string

	// Статус подключения
	IsConnected bool

	// Выполняется команда контроллера
	Busy bool

	// Текст кнопки действия (Conectar/Desconectar)
	ActionButtonText string

	// Доступность элементов управления
	ConnectionStringEnabled    bool
	ActionButtonEnabled        bool
	ClearProfilesButtonEnabled bool
	OperationsEnabled          bool

	// Строка состояния внизу окна
	StatusText string
}

// NewMainViewModel создаёт новый экземпляр MainViewModel с дефолтными значениями.
func NewMainViewModel() *MainViewModel {
	vm := &MainViewModel{ConnectionList: []string{}}
	vm.UpdateUIState()
	return vm
}

// UpdateUIState обновляет состояние интерфейса в зависимости от подключения и занятости.
func (vm *MainViewModel) UpdateUIState() {
	if vm.IsConnected {
		vm.ActionButtonText = "Desconectar"
		vm.ConnectionStringEnabled = false
		vm.ClearProfilesButtonEnabled = false
		vm.StatusText = "Conectado a " + vm.ConnectionString
	} else {
		vm.ActionButtonText = "Conectar"
		vm.ConnectionStringEnabled = true
		vm.ClearProfilesButtonEnabled = true
		vm.StatusText = "Sin conexión"
	}

	// Во время команды порт нельзя закрыть, а вторую команду нельзя начать
	vm.ActionButtonEnabled = !vm.Busy && (vm.IsConnected || strings.TrimSpace(vm.ConnectionString) != "")
	vm.OperationsEnabled = vm.IsConnected && !vm.Busy
	if vm.Busy {
		vm.StatusText = "Operación en curso..."
	}
}
