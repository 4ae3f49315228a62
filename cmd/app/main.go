//go:build windows

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"reactivos/internal/config"
	"reactivos/internal/infrastructure/logger"
	"reactivos/internal/infrastructure/storage"
	"reactivos/internal/service/connection"
	"reactivos/internal/service/monitor"
	"reactivos/internal/service/reactive"
	"reactivos/internal/simulator"
	"reactivos/internal/ui"
	"reactivos/internal/ui/controller"
	"reactivos/internal/ui/viewmodel"
	"reactivos/pkg/tagctl"
)

func main() {
	configPath := flag.String("config", "", "ruta al archivo de configuración (.yaml o .toml)")
	simulate := flag.Bool("simulate", false, "usar el controlador simulado en lugar del puerto serie")
	flag.Parse()

	// 1. Конфигурация
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// 2. Логгер (infrastructure)
	log, err := logger.New("reactivos", cfg.LoggerOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()
	log.Info("Application starting")

	// 3. Репозиторий профилей (infrastructure)
	repo, err := storage.NewFileProfileRepository(cfg.Storage.ProfilesPath)
	if err != nil {
		log.Fatal("Failed to initialize profile repository: %v", err)
	}

	// 4. Клиент контроллера. Заметки сессий идут в монитор главного окна.
	var mainCtrl *controller.MainController
	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = logger.TransportHook(log.With("component", "serial"))
	clientCfg.OnNote = func(n tagctl.Note) {
		if mainCtrl != nil {
			mainCtrl.HandleNote(n)
		}
	}
	if *simulate {
		log.Warn("Simulation mode: serial port is not used")
		clientCfg.Opener = simulator.New(simulator.DefaultScript()).Open
	}
	client, err := tagctl.NewClient(clientCfg)
	if err != nil {
		log.Fatal("Failed to create controller client: %v", err)
	}

	// 5. Сервисы
	connService := connection.NewConnectionService(client, repo, log)
	reactiveService := reactive.NewService(client, log)

	// 6. ViewModel и контроллеры
	monitorVM := viewmodel.NewMonitor(viewmodel.DefaultMonitorLines)
	mainVM := viewmodel.NewMainViewModel()
	if cfg.Serial.Port != "" {
		mainVM.ConnectionString = fmt.Sprintf("%s:%d", cfg.Serial.Port, cfg.Serial.BaudRate)
	}
	mainCtrl = controller.NewMainController(mainVM, connService, monitorVM)
	opsCtrl := controller.NewOperationsController(mainCtrl, reactiveService, viewmodel.NewTagViewModel())

	// 7. Наблюдение за COM-портами (в режиме симуляции порт не настоящий)
	if !*simulate && cfg.Serial.PortScanMs > 0 {
		portWatch := monitor.NewService(connService.GetSystemPorts, monitor.Config{
			PollInterval: time.Duration(cfg.Serial.PortScanMs) * time.Millisecond,
			InitialDelay: 2 * time.Second,
		}, log.With("component", "ports"))
		portWatch.SetUpdateCallback(mainCtrl.OnPortsChanged)
		portWatch.Start()
		defer portWatch.Stop()
	}

	// 8. GUI
	log.Info("Initialization complete, starting GUI")
	if err := ui.Run(mainCtrl, opsCtrl); err != nil {
		log.Fatal("GUI error: %v", err)
	}
}
