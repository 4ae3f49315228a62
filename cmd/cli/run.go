package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"reactivos/internal/config"
	"reactivos/internal/infrastructure/logger"
	"reactivos/internal/service/reactive"
	"reactivos/internal/simulator"
	"reactivos/pkg/tagctl"
)

// Коды завершения
const (
	exitSuccess = 0
	exitFailure = 1
	exitPartial = 2
)

// simulatedPort имя порта в режиме -simulate.
const simulatedPort = "SIM"

// aliases испанские имена операций.
var aliases = map[string]tagctl.CommandKind{
	"programar": tagctl.CommandWrite,
	"alta":      tagctl.CommandRead,
	"uso":       tagctl.CommandTrack,
	"baja":      tagctl.CommandOut,
}

const usage = `Uso: reactivos-cli <comando> [opciones]

Comandos:
  ports                    lista los puertos serie disponibles
  write | programar        programa una etiqueta con los datos del reactivo
  read  | alta             registra la fecha de alta
  track | uso              registra el uso (peso)
  out   | baja             registra la fecha de baja
`

// options флаги командной строки.
type options struct {
	configPath string
	port       string
	baud       int
	simulate   bool
	jsonOut    bool
	record     tagctl.ReactiveRecord
}

func parseCommand(name string) (tagctl.CommandKind, error) {
	if kind, ok := aliases[strings.ToLower(name)]; ok {
		return kind, nil
	}
	return tagctl.ParseCommandKind(name)
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("reactivos-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fmt.Fprintln(stderr, "\nOpciones:")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "archivo de configuración (.yaml o .toml)")
	fs.StringVar(&opts.port, "port", "", "puerto serie, por ejemplo COM8")
	fs.IntVar(&opts.baud, "baud", 0, "velocidad del puerto")
	fs.BoolVar(&opts.simulate, "simulate", false, "usar el controlador simulado")
	fs.BoolVar(&opts.jsonOut, "json", false, "imprimir el resultado en JSON")

	r := &opts.record
	fs.StringVar(&r.Producto, "producto", "", "Producto")
	fs.StringVar(&r.Numero, "numero", "", "Número")
	fs.StringVar(&r.Marca, "marca", "", "Marca")
	fs.StringVar(&r.Codigo, "codigo", "", "Código")
	fs.StringVar(&r.Presentacion, "presentacion", "", "Presentación")
	fs.StringVar(&r.Lote, "lote", "", "Lote")
	fs.StringVar(&r.Vencimiento, "vencimiento", "", "Vencimiento")
	return fs
}

// run выполняет одну команду и возвращает код завершения.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return exitFailure
	}
	name := args[0]

	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args[1:]); err != nil {
		return exitFailure
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitFailure
	}
	if opts.port != "" {
		cfg.Serial.Port = opts.port
	}
	if opts.baud > 0 {
		cfg.Serial.BaudRate = opts.baud
	}

	logOpts := cfg.LoggerOptions()
	logOpts.Output = zerolog.ConsoleWriter{Out: stderr, NoColor: true, TimeFormat: time.TimeOnly}
	log, err := logger.New("reactivos-cli", logOpts)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitFailure
	}
	defer log.Close()

	if name == "ports" {
		return listPorts(opts.simulate, stdout, stderr)
	}

	kind, err := parseCommand(name)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return exitFailure
	}

	var rec *tagctl.ReactiveRecord
	if kind == tagctl.CommandWrite {
		r := opts.record.Trimmed()
		if err := tagctl.ValidateRecord(r); err != nil {
			fmt.Fprintln(stderr, reactive.Describe(rejectedResult(kind, err)).Text)
			return exitFailure
		}
		rec = &r
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = logger.TransportHook(log.With("component", "serial"))
	clientCfg.OnNote = func(n tagctl.Note) {
		if text, ok := reactive.MonitorText(n); ok && !opts.jsonOut {
			fmt.Fprintf(stdout, "%s  %s\n", n.At.Format("15:04:05"), text)
		}
	}
	if opts.simulate {
		clientCfg.Opener = simulator.New(simulator.DefaultScript()).Open
		if cfg.Serial.Port == "" {
			cfg.Serial.Port = simulatedPort
		}
	}
	if cfg.Serial.Port == "" {
		fmt.Fprintln(stderr, "Indica el puerto con -port o REACTIVOS_PORT.")
		return exitFailure
	}

	client, err := tagctl.NewClient(clientCfg)
	if err != nil {
		fmt.Fprintf(stderr, "client: %v\n", err)
		return exitFailure
	}
	if err := client.Connect(cfg.Serial.Port, cfg.Serial.BaudRate); err != nil {
		fmt.Fprintf(stderr, "%s (%v)\n", reactive.MsgConnectFailed, err)
		return exitFailure
	}
	defer func() {
		if err := client.Disconnect(); err != nil {
			log.Warn("Disconnect: %v", err)
		}
	}()

	svc := reactive.NewService(client, log)
	res := svc.Run(ctx, kind, rec)
	msg := reactive.Describe(res)

	if opts.jsonOut {
		if err := writeJSON(stdout, res, msg); err != nil {
			fmt.Fprintf(stderr, "json: %v\n", err)
			return exitFailure
		}
	} else {
		fmt.Fprintf(stdout, "[%s] %s\n", msg.Severity.Title(), msg.Text)
	}
	return exitCode(res.Outcome.Kind)
}

func exitCode(kind tagctl.OutcomeKind) int {
	switch kind {
	case tagctl.OutcomeSuccess:
		return exitSuccess
	case tagctl.OutcomePartialSuccess:
		return exitPartial
	default:
		return exitFailure
	}
}

func listPorts(simulate bool, stdout, stderr io.Writer) int {
	if simulate {
		fmt.Fprintln(stdout, simulatedPort)
		return exitSuccess
	}
	list, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(stderr, "ports: %v\n", err)
		return exitFailure
	}
	if len(list) == 0 {
		fmt.Fprintln(stderr, "No se encontraron puertos serie.")
		return exitSuccess
	}
	sort.Strings(list)
	for _, p := range list {
		fmt.Fprintln(stdout, p)
	}
	return exitSuccess
}

// jsonResult итог команды для вывода -json.
type jsonResult struct {
	Command  string   `json:"command"`
	Outcome  string   `json:"outcome"`
	Reason   string   `json:"reason,omitempty"`
	Markers  []string `json:"markers,omitempty"`
	Missing  string   `json:"missing,omitempty"`
	Message  string   `json:"message"`
	Lines    []string `json:"lines"`
	Duration string   `json:"duration"`
}

func writeJSON(w io.Writer, res tagctl.Result, msg reactive.Message) error {
	out := jsonResult{
		Command:  res.Command.String(),
		Outcome:  res.Outcome.Kind.String(),
		Reason:   res.Outcome.Reason,
		Markers:  res.Outcome.Markers,
		Missing:  res.Outcome.Missing,
		Message:  msg.Text,
		Lines:    res.Lines(),
		Duration: res.Duration().Round(time.Millisecond).String(),
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func rejectedResult(kind tagctl.CommandKind, err error) tagctl.Result {
	now := time.Now()
	return tagctl.Result{
		Command:  kind,
		Outcome:  tagctl.Outcome{Kind: tagctl.OutcomeFailure, Reason: err.Error(), Err: err},
		Started:  now,
		Finished: now,
	}
}
