// Package app wires the services into the four interactive screens:
// login, registro, home and perfil. The screens are thin: every
// decision lives in the services, and every failure ends only the
// action that triggered it.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/api"
	"github.com/eduarcas/savelook/internal/auth"
	"github.com/eduarcas/savelook/internal/locate"
	"github.com/eduarcas/savelook/internal/models"
	"github.com/eduarcas/savelook/internal/profile"
	"github.com/eduarcas/savelook/internal/session"
	"github.com/eduarcas/savelook/internal/verification"
)

// App owns the screen flow and the per-flow services.
type App struct {
	client   api.Client
	store    *session.Store
	auth     *auth.Service
	acquirer *locate.Acquirer
	log      *zap.Logger

	in       *bufio.Reader
	out      io.Writer
	password func() (string, error)
}

// New wires an App over stdin/stdout.
func New(client api.Client, store *session.Store, authSvc *auth.Service, acquirer *locate.Acquirer, log *zap.Logger) *App {
	return &App{
		client:   client,
		store:    store,
		auth:     authSvc,
		acquirer: acquirer,
		log:      log,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		password: readPassword,
	}
}

// notice prints a user-facing modal-style message.
func (a *App) notice(title, msg string) {
	fmt.Fprintf(a.out, "\n[%s] %s\n\n", title, msg)
}

// remoteMessage maps an error from a network-backed action to the
// user-facing text: the server's message when it sent one, a generic
// connectivity notice otherwise.
func remoteMessage(err error, fallback string) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	if reqErr != nil && reqErr.Status != 0 {
		return fallback
	}
	return "No se pudo conectar con el servidor."
}

// Run warm-starts the session and enters the navigation loop. A
// restored session lands directly on the home screen.
func (a *App) Run(ctx context.Context) error {
	a.store.Load(ctx)
	if a.store.Current() != nil {
		a.homeScreen(ctx)
	}

	for {
		choice, err := prompt(a.in, a.out, "SaveLook (login | registro | salir)")
		if err != nil {
			return err
		}
		switch choice {
		case "login":
			if a.loginScreen(ctx) {
				a.homeScreen(ctx)
			}
		case "registro":
			a.registerScreen(ctx)
		case "salir":
			fmt.Fprintln(a.out, "Hasta luego")
			return nil
		default:
			fmt.Fprintln(a.out, "Opción no válida")
		}
	}
}

// loginScreen reports whether login succeeded.
func (a *App) loginScreen(ctx context.Context) bool {
	correo, err := prompt(a.in, a.out, "Correo electrónico")
	if err != nil {
		return false
	}
	fmt.Fprint(a.out, "Contraseña: ")
	password, err := a.password()
	fmt.Fprintln(a.out)
	if err != nil {
		return false
	}

	_, err = a.auth.Login(ctx, correo, password)
	switch {
	case err == nil:
		return true
	case errors.Is(err, auth.ErrMissingCredentials):
		a.notice("Error", "Por favor ingresa email y contraseña")
	case errors.Is(err, auth.ErrInvalidCredentials):
		a.notice("Credenciales incorrectas", "Email o contraseña no coinciden")
	default:
		a.notice("Error", remoteMessage(err, "No se pudo iniciar sesión."))
	}
	return false
}

// registerScreen drives the verification gate: send code, collect it in
// a non-dismissible prompt, then submit the registration.
func (a *App) registerScreen(ctx context.Context) {
	gate := verification.NewGate(a.client, a.log)

	correo, err := prompt(a.in, a.out, "Correo electrónico")
	if err != nil {
		return
	}
	if err := gate.RequestCode(ctx, correo); err != nil {
		if errors.Is(err, verification.ErrInvalidEmail) {
			a.notice("Correo inválido", "Por favor ingresa un correo electrónico válido.")
		} else {
			a.notice("Error", remoteMessage(err, "No se pudo enviar el código."))
		}
		return
	}
	a.notice("Código enviado", "Revisa tu correo para obtener el código de verificación.")

	// The code prompt cannot be dismissed: leaving it without a valid
	// code just re-shows the verification notice.
	for gate.State() != verification.Verified {
		code, err := prompt(a.in, a.out, "Código de verificación (o 'reenviar')")
		if err != nil {
			return
		}
		if code == "reenviar" {
			if err := gate.RequestCode(ctx, correo); err != nil {
				a.notice("Error", remoteMessage(err, "No se pudo enviar el código."))
			} else {
				a.notice("Código enviado", "Revisa tu correo para obtener el código de verificación.")
			}
			continue
		}
		if err := gate.VerifyCode(code); err != nil {
			a.notice("Verificación requerida", "Debes verificar tu correo electrónico antes de registrarte.")
			continue
		}
	}
	a.notice("Código verificado", "Tu correo ha sido verificado correctamente.")

	reg, err := a.registrationForm()
	if err != nil {
		return
	}

	if err := gate.Submit(ctx, reg); err != nil {
		switch {
		case errors.Is(err, verification.ErrVerificationRequired):
			a.notice("Verificación requerida", "Debes verificar tu correo electrónico antes de registrarte.")
		case errors.Is(err, verification.ErrMissingFields):
			a.notice("Campos incompletos", "Por favor llena todos los campos obligatorios.")
		default:
			a.notice("Error", remoteMessage(err, "No se pudo registrar el usuario."))
		}
		return
	}
	a.notice("Registro exitoso", "Usuario creado correctamente.")
}

func (a *App) registrationForm() (models.Registration, error) {
	var reg models.Registration
	var err error

	fmt.Fprint(a.out, "Contraseña: ")
	reg.Password, err = a.password()
	fmt.Fprintln(a.out)
	if err != nil {
		return reg, err
	}

	fields := []struct {
		label string
		dst   *string
	}{
		{"Nombre", &reg.Nombre},
		{"Apellidos", &reg.Apellidos},
		{"Edad", &reg.Edad},
		{"Estado", &reg.Estado},
		{"Municipio", &reg.Municipio},
		{"Ciudad", &reg.Ciudad},
		{"Código postal", &reg.CP},
		{"Tipo de sangre", &reg.TipoSangre},
		{"Descripción", &reg.DescripcionLook},
	}
	for _, f := range fields {
		*f.dst, err = prompt(a.in, a.out, f.label)
		if err != nil {
			return reg, err
		}
	}
	return reg, nil
}

// homeScreen shows the map state for the logged-in user and starts one
// acquisition run in the background.
func (a *App) homeScreen(ctx context.Context) {
	a.refreshProfile(ctx)

	go func() {
		if err := a.acquirer.Acquire(ctx); err != nil {
			if errors.Is(err, locate.ErrPermissionDenied) {
				a.notice("Error", "Permiso de ubicación denegado")
			}
		}
	}()

	for {
		choice, err := prompt(a.in, a.out, "Home (mapa | centrar | actualizar | perfil | cerrar)")
		if err != nil {
			return
		}
		switch choice {
		case "mapa", "centrar":
			// Re-centering only moves the camera over the last
			// published fix; it does not reacquire.
			a.printCamera()
		case "actualizar":
			if err := a.acquirer.Acquire(ctx); err != nil && errors.Is(err, locate.ErrPermissionDenied) {
				a.notice("Error", "Permiso de ubicación denegado")
			} else {
				a.printCamera()
			}
		case "perfil":
			a.profileScreen(ctx)
		case "cerrar":
			a.auth.Logout(ctx)
			fmt.Fprintln(a.out, "Sesión cerrada")
			return
		default:
			fmt.Fprintln(a.out, "Opción no válida")
		}
	}
}

// refreshProfile re-reads the logged-in user's record from the
// directory, keyed by the session email, and folds it into the session.
func (a *App) refreshProfile(ctx context.Context) {
	current := a.store.Current()
	if current == nil {
		return
	}
	user, err := a.client.UserByEmail(ctx, current.Correo)
	if err != nil || user == nil {
		a.log.Warn("profile refresh failed", zap.Error(err))
		a.notice("Error", "No se pudo cargar la información del usuario")
		return
	}
	a.store.Set(ctx, *user)
}

func (a *App) printCamera() {
	fix := a.acquirer.Current()
	fmt.Fprintf(a.out, "Cámara: centro=[%.4f, %.4f] zoom=16\n", fix.Lon(), fix.Lat())
}

// profileScreen edits the profile with the current values as defaults.
func (a *App) profileScreen(ctx context.Context) {
	editor := profile.NewEditor(a.store, a.client, a.log)
	f := editor.Form()

	fields := []struct {
		label string
		dst   *string
	}{
		{"Nombre", &f.Nombre},
		{"Apellidos", &f.Apellidos},
		{"Edad", &f.Edad},
		{"Estado", &f.Estado},
		{"Municipio", &f.Municipio},
		{"Ciudad", &f.Ciudad},
		{"Código postal", &f.CP},
		{"Tipo de sangre", &f.TipoSangre},
		{"Descripción", &f.DescripcionLook},
	}
	for _, fl := range fields {
		v, err := promptDefault(a.in, a.out, fl.label, *fl.dst)
		if err != nil {
			return
		}
		*fl.dst = v
	}
	editor.SetForm(f)

	imgPath, err := promptDefault(a.in, a.out, "Foto (ruta de archivo, vacío para omitir)", "")
	if err != nil {
		return
	}
	if imgPath != "" {
		if err := editor.UploadImageFile(ctx, imgPath); err != nil {
			a.notice("Error", "No se pudo actualizar la imagen")
		} else {
			a.notice("Éxito", "Foto actualizada")
		}
	}

	if err := editor.Save(ctx); err != nil {
		var verr *profile.ValidationError
		switch {
		case errors.As(err, &verr):
			a.notice("Error", "Completa todos los campos obligatorios: "+verr.Error())
		default:
			a.notice("Error", remoteMessage(err, "No se pudo actualizar"))
		}
		return
	}
	a.notice("Éxito", "Datos actualizados")
}
