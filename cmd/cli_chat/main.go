package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"healthmate/internal/client"
	"healthmate/internal/config"
	"healthmate/internal/domain"
)

type app struct {
	reader  *bufio.Reader
	out     io.Writer
	api     *client.APIClient
	session *client.Session
	view    string
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewExample()
	defer logger.Sync()

	tokenPath := cfg.TokenFile
	if tokenPath == "" {
		tokenPath, err = client.DefaultTokenPath()
		if err != nil {
			log.Fatal(err)
		}
	}

	a := &app{
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		api:    client.NewAPIClient(cfg.APIURL, 0, logger),
		view:   client.ViewAuth,
	}
	a.session = client.NewSession(a.api, client.NewFileTokenStore(tokenPath), client.NavigatorFunc(func(v string) { a.view = v }), logger)

	if err := a.session.Init(ctx); err != nil {
		logger.Warn("session init failed", zap.Error(err))
	}
	if _, ok := a.session.CurrentUser(); ok {
		a.view = client.ViewDashboard
	}

	if err := a.run(ctx); err != nil && !errors.Is(err, io.EOF) {
		log.Fatal(err)
	}
}

func (a *app) run(ctx context.Context) error {
	for {
		var err error
		switch a.view {
		case client.ViewDashboard:
			err = a.dashboardMenu(ctx)
		default:
			err = a.authMenu(ctx)
		}
		if err != nil {
			return err
		}
	}
}

func (a *app) authMenu(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n===== HealthMate =====")
	fmt.Fprintln(a.out, "[1] Iniciar sesion")
	fmt.Fprintln(a.out, "[2] Registrarse")
	fmt.Fprintln(a.out, "[3] Salir")
	choice, err := readLine(a.reader, a.out, "Selecciona una opcion: ")
	if err != nil {
		return err
	}

	auth := client.NewAuthView(a.api, a.session)
	switch choice {
	case "1":
		email, err := readLine(a.reader, a.out, "Email: ")
		if err != nil {
			return err
		}
		password, err := readSecret(a.reader, a.out, "Password: ")
		if err != nil {
			return err
		}
		if err := auth.Login(ctx, email, password); err != nil {
			fmt.Fprintf(a.out, "No se pudo iniciar sesion: %s\n", describe(err))
			return nil
		}
		user, _ := a.session.CurrentUser()
		fmt.Fprintf(a.out, "Hola, %s.\n", user.Name)
	case "2":
		name, err := readLine(a.reader, a.out, "Nombre: ")
		if err != nil {
			return err
		}
		email, err := readLine(a.reader, a.out, "Email: ")
		if err != nil {
			return err
		}
		password, err := readSecret(a.reader, a.out, "Password: ")
		if err != nil {
			return err
		}
		msg, err := auth.Register(ctx, name, email, password)
		if err != nil {
			fmt.Fprintf(a.out, "No se pudo registrar: %s\n", describe(err))
			return nil
		}
		fmt.Fprintln(a.out, msg+". Ahora inicia sesion.")
	case "3":
		return io.EOF
	default:
		fmt.Fprintln(a.out, "Opcion invalida.")
	}
	return nil
}

func (a *app) dashboardMenu(ctx context.Context) error {
	user, _ := a.session.CurrentUser()
	fmt.Fprintf(a.out, "\n--- Dashboard de %s ---\n", user.Name)
	fmt.Fprintln(a.out, "[1] Nuevo chat sobre un reporte")
	fmt.Fprintln(a.out, "[2] Mis reportes")
	fmt.Fprintln(a.out, "[3] Cerrar sesion")
	fmt.Fprintln(a.out, "[4] Salir")
	choice, err := readLine(a.reader, a.out, "Selecciona una opcion: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return a.chatFlow(ctx)
	case "2":
		return a.reportsFlow(ctx)
	case "3":
		if err := a.session.Logout(); err != nil {
			fmt.Fprintf(a.out, "Error cerrando sesion: %v\n", err)
		}
	case "4":
		return io.EOF
	default:
		fmt.Fprintln(a.out, "Opcion invalida.")
	}
	return nil
}

func (a *app) chatFlow(ctx context.Context) error {
	view := client.NewChatView(a.api, a.session)

	name, err := readLine(a.reader, a.out, "Nombre del reporte: ")
	if err != nil {
		return err
	}
	history, err := view.Open(ctx, name)
	if err != nil {
		fmt.Fprintf(a.out, "No se pudo abrir el reporte: %s\n", describe(err))
		return a.handleAuthError(err)
	}
	printHistory(a.out, history)

	fmt.Fprintln(a.out, "---- Chat (/file <ruta> [pregunta] adjunta un archivo, 'salir' para volver) ----")
	for {
		line, err := readLine(a.reader, a.out, "Tu > ")
		if err != nil {
			return err
		}
		if strings.EqualFold(line, "salir") {
			return nil
		}

		prompt := line
		var upload *client.Upload
		if path, p, ok := parseFileCommand(line); ok {
			upload, err = loadUpload(path)
			if err != nil {
				fmt.Fprintf(a.out, "Error: %v\n", err)
				continue
			}
			prompt = p
		}

		fmt.Fprintln(a.out, "Analizando...")
		turn, err := view.Send(ctx, prompt, upload)
		if turn.Response != "" {
			fmt.Fprintf(a.out, "IA > %s\n", turn.Response)
		}
		if err != nil {
			if errors.Is(err, client.ErrEmptyTurn) {
				continue
			}
			fmt.Fprintf(a.out, "Error: %s\n", describe(err))
			if client.IsUnauthorized(err) {
				return a.handleAuthError(err)
			}
		}
	}
}

func (a *app) reportsFlow(ctx context.Context) error {
	list := client.NewChatListView(a.api, a.session)
	reports, err := list.Reports(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "No se pudieron cargar los reportes: %s\n", describe(err))
		return a.handleAuthError(err)
	}
	if len(reports) == 0 {
		fmt.Fprintln(a.out, "Todavia no hay reportes.")
		return nil
	}

	for i, r := range reports {
		fmt.Fprintf(a.out, "[%d] %s (%s)\n    %s\n", i+1, displayName(r.ReportName), r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Preview())
	}
	choice, err := readLine(a.reader, a.out, "Abrir reporte (Enter para volver): ")
	if err != nil || choice == "" {
		return err
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(reports) {
		fmt.Fprintln(a.out, "Seleccion invalida.")
		return nil
	}

	history, err := list.Open(ctx, reports[idx-1].ReportName)
	if err != nil {
		fmt.Fprintf(a.out, "No se pudo cargar el historial: %s\n", describe(err))
		return a.handleAuthError(err)
	}
	printHistory(a.out, history)
	return nil
}

// handleAuthError cierra la sesion si el servidor rechazo el token.
func (a *app) handleAuthError(err error) error {
	if client.IsUnauthorized(err) {
		return a.session.Logout()
	}
	return nil
}

func printHistory(w io.Writer, entries []domain.ChatEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "Tu > %s\nIA > %s\n", e.Message, e.Response)
	}
}

func displayName(name string) string {
	if name == "" {
		return "(sin nombre)"
	}
	return name
}

func describe(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
