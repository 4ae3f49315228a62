package controller

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"reactivos/internal/domain/models"
	"reactivos/internal/service/connection"
	"reactivos/internal/service/reactive"
	"reactivos/internal/ui/viewmodel"
	"reactivos/pkg/tagctl"
)

// MainController управляет подключением к контроллеру меток и монитором состояния.
type MainController struct {
	mu          sync.Mutex
	vm          *viewmodel.MainViewModel
	connService *connection.ConnectionService
	monitor     *viewmodel.Monitor
	onUpdate    func()

	connectedPort string
}

// NewMainController создает новый экземпляр MainController с использованием Dependency Injection.
func NewMainController(vm *viewmodel.MainViewModel, connService *connection.ConnectionService, monitor *viewmodel.Monitor) *MainController {
	return &MainController{
		vm:          vm,
		connService: connService,
		monitor:     monitor,
	}
}

// Initialize подготавливает начальные данные (вызывать из View при старте)
func (c *MainController) Initialize() {
	c.RefreshConnectionList()
}

// RefreshConnectionList обновляет список доступных подключений во ViewModel
func (c *MainController) RefreshConnectionList() {
	var items []string

	// 1. Профили (репозиторий отдает последние использованные первыми)
	profiles, _ := c.connService.LoadProfiles()
	for _, p := range profiles {
		items = append(items, fmt.Sprintf("%s:%d", p.PortName, p.BaudRate))
	}

	// 2. COM-порты, которых нет в профилях
	systemPorts, _ := c.connService.GetSystemPorts()
	for _, port := range systemPorts {
		if !isPortInProfiles(port, profiles) {
			items = append(items, port)
		}
	}

	c.mu.Lock()
	c.vm.ConnectionList = items
	if c.vm.ConnectionString == "" && len(items) > 0 {
		c.vm.ConnectionString = items[0]
	}
	c.vm.UpdateUIState()
	c.mu.Unlock()

	c.notifyUpdate()
}

func isPortInProfiles(port string, profiles []*models.ConnectionProfile) bool {
	for _, p := range profiles {
		if p.PortName == port {
			return true
		}
	}
	return false
}

// ClearProfiles удаляет сохраненные профили и обновляет список.
func (c *MainController) ClearProfiles() error {
	if err := c.connService.ClearProfiles(); err != nil {
		return err
	}
	c.RefreshConnectionList()
	return nil
}

// ViewModel возвращает ViewModel главного окна.
func (c *MainController) ViewModel() *viewmodel.MainViewModel {
	return c.vm
}

// Monitor возвращает монитор состояния.
func (c *MainController) Monitor() *viewmodel.Monitor {
	return c.monitor
}

// SetOnUpdate устанавливает callback для обновления пользовательского интерфейса.
func (c *MainController) SetOnUpdate(callback func()) {
	c.onUpdate = callback
}

// SetConnectionString переносит выбор пользователя во ViewModel.
func (c *MainController) SetConnectionString(s string) {
	c.mu.Lock()
	c.vm.ConnectionString = s
	c.vm.UpdateUIState()
	c.mu.Unlock()
	c.notifyUpdate()
}

// Connect открывает порт из строки подключения ("COM8" или "COM8:115200").
func (c *MainController) Connect() error {
	c.mu.Lock()
	input := c.vm.ConnectionString
	c.mu.Unlock()

	port, baud, err := parseConnectionString(input)
	if err != nil {
		return err
	}
	if err := c.connService.Connect(port, baud); err != nil {
		return fmt.Errorf("%s (%w)", reactive.MsgConnectFailed, err)
	}

	c.mu.Lock()
	c.vm.IsConnected = true
	c.vm.ConnectionString = fmt.Sprintf("%s:%d", port, baud)
	c.connectedPort = port
	c.vm.UpdateUIState()
	c.mu.Unlock()

	c.RefreshConnectionList()
	return nil
}

// Disconnect закрывает порт.
func (c *MainController) Disconnect() error {
	if err := c.connService.Disconnect(); err != nil {
		return fmt.Errorf("%s (%w)", reactive.MsgDisconnectFailed, err)
	}

	c.mu.Lock()
	c.vm.IsConnected = false
	c.connectedPort = ""
	c.vm.UpdateUIState()
	c.mu.Unlock()

	c.notifyUpdate()
	return nil
}

// IsConnected возвращает фактическое состояние соединения.
func (c *MainController) IsConnected() bool {
	return c.connService.IsConnected()
}

// OnPortsChanged обновляет список подключений и закрывает соединение,
// если его порт пропал из системы. Передается в monitor.Service.
func (c *MainController) OnPortsChanged(available []string) {
	c.mu.Lock()
	port := c.connectedPort
	c.mu.Unlock()

	if port != "" && c.connService.IsConnected() && !slices.Contains(available, port) {
		c.monitor.Append(fmt.Sprintf("Puerto %s no disponible.", port))
		if err := c.Disconnect(); err != nil {
			c.monitor.Append(err.Error())
		}
	}
	c.RefreshConnectionList()
}

// HandleNote выводит заметку сессии в монитор. Передается в tagctl.Config.OnNote.
func (c *MainController) HandleNote(n tagctl.Note) {
	if text, ok := reactive.MonitorText(n); ok {
		c.monitor.Append(text)
	}
}

// setBusy отмечает начало и конец команды.
func (c *MainController) setBusy(busy bool) {
	c.mu.Lock()
	c.vm.Busy = busy
	c.vm.UpdateUIState()
	c.mu.Unlock()
	c.notifyUpdate()
}

// notifyUpdate вызывает callback для обновления UI, если он установлен.
func (c *MainController) notifyUpdate() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

func parseConnectionString(input string) (port string, baud int, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", 0, &ValidationError{Message: "Selecciona un puerto."}
	}

	baud = tagctl.DefaultBaudRate
	if idx := strings.LastIndex(input, ":"); idx > 0 {
		b, convErr := strconv.Atoi(strings.TrimSpace(input[idx+1:]))
		if convErr != nil || b <= 0 {
			return "", 0, &ValidationError{Message: fmt.Sprintf("Velocidad inválida: %q", input[idx+1:])}
		}
		port, baud = strings.TrimSpace(input[:idx]), b
	} else {
		port = input
	}
	return port, baud, nil
}
