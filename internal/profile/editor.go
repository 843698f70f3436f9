// Package profile reconciles a local profile edit buffer with the
// session store and the remote API. Field saves and image uploads are
// independent operations with their own loading flags; both funnel
// their results through the session store's merge.
package profile

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/api"
	"github.com/eduarcas/savelook/internal/models"
	"github.com/eduarcas/savelook/internal/session"
)

// ValidationError reports which form fields failed client-side checks.
// No network call is made when validation fails.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Form is the profile edit buffer. All fields are form-typed strings;
// coercion (age to int, blood type to upper case, trimming) happens at
// save time.
type Form struct {
	Nombre          string
	Apellidos       string
	Edad            string
	Estado          string
	Municipio       string
	Ciudad          string
	CP              string
	TipoSangre      string
	DescripcionLook string
}

// Editor owns one profile-editing flow for the logged-in user.
type Editor struct {
	mu        sync.Mutex
	form      Form
	image     string
	correo    string
	saving    bool
	uploading bool

	store  *session.Store
	client api.Client
	log    *zap.Logger
}

// NewEditor returns an Editor whose buffer is initialized from the
// current session snapshot.
func NewEditor(store *session.Store, client api.Client, log *zap.Logger) *Editor {
	e := &Editor{store: store, client: client, log: log}

	if user := store.Current(); user != nil {
		e.correo = user.Correo
		e.image = user.ImagenLook
		e.form = Form{
			Nombre:          user.Nombre,
			Apellidos:       user.Apellidos,
			Estado:          user.Estado,
			Municipio:       user.Municipio,
			Ciudad:          user.Ciudad,
			CP:              user.CP,
			TipoSangre:      user.TipoSangre,
			DescripcionLook: user.DescripcionLook,
		}
		if user.Edad != 0 {
			e.form.Edad = strconv.Itoa(user.Edad)
		}
	}
	return e
}

// Form returns a copy of the edit buffer.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// SetForm replaces the edit buffer.
func (e *Editor) SetForm(f Form) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = f
}

// Image returns the currently displayed image reference.
func (e *Editor) Image() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.image
}

// Saving reports whether a field save is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Uploading reports whether an image upload is in flight.
func (e *Editor) Uploading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uploading
}

// validate checks required fields and the age format, returning a
// *ValidationError naming every offending field.
func validate(f Form) (int, error) {
	var bad []string
	if strings.TrimSpace(f.Nombre) == "" {
		bad = append(bad, "nombre")
	}
	if strings.TrimSpace(f.Apellidos) == "" {
		bad = append(bad, "apellidos")
	}
	edad, err := strconv.Atoi(strings.TrimSpace(f.Edad))
	if strings.TrimSpace(f.Edad) == "" || err != nil {
		bad = append(bad, "edad")
	}
	if strings.TrimSpace(f.Estado) == "" {
		bad = append(bad, "estado")
	}
	if len(bad) > 0 {
		return 0, &ValidationError{Fields: bad}
	}
	return edad, nil
}

// Save validates the buffer, sends it to the remote API keyed by the
// session email, and on success merges the saved fields into the
// session store. On a remote failure the buffer and the store are left
// unchanged.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return fmt.Errorf("save already in progress")
	}
	e.saving = true
	form := e.form
	correo := e.correo
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	edad, err := validate(form)
	if err != nil {
		return err
	}

	patch := models.UserPatch{
		Nombre:          models.String(strings.TrimSpace(form.Nombre)),
		Apellidos:       models.String(strings.TrimSpace(form.Apellidos)),
		Edad:            models.Int(edad),
		Estado:          models.String(strings.TrimSpace(form.Estado)),
		Municipio:       models.String(strings.TrimSpace(form.Municipio)),
		Ciudad:          models.String(strings.TrimSpace(form.Ciudad)),
		CP:              models.String(strings.TrimSpace(form.CP)),
		TipoSangre:      models.String(strings.ToUpper(strings.TrimSpace(form.TipoSangre))),
		DescripcionLook: models.String(strings.TrimSpace(form.DescripcionLook)),
	}

	if err := e.client.UpdateUser(ctx, correo, patch); err != nil {
		return err
	}

	e.store.Update(ctx, patch)
	e.log.Info("profile saved", zap.String("correo", correo))
	return nil
}

// UploadImage base64-encodes raw and sends it as an image-only update.
// On success the new reference is merged into the session store and
// becomes the displayed image; on failure the previous image stays in
// place. Runs under its own loading flag, independent of Save.
func (e *Editor) UploadImage(ctx context.Context, raw []byte) error {
	e.mu.Lock()
	if e.uploading {
		e.mu.Unlock()
		return fmt.Errorf("upload already in progress")
	}
	e.uploading = true
	correo := e.correo
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.uploading = false
		e.mu.Unlock()
	}()

	encoded := base64.StdEncoding.EncodeToString(raw)
	patch := models.UserPatch{ImagenLook: models.String(encoded)}

	if err := e.client.UpdateUser(ctx, correo, patch); err != nil {
		return err
	}

	e.store.Update(ctx, patch)
	e.mu.Lock()
	e.image = encoded
	e.mu.Unlock()

	e.log.Info("profile image updated", zap.String("correo", correo), zap.Int("bytes", len(raw)))
	return nil
}

// UploadImageFile reads an image from disk and uploads it.
func (e *Editor) UploadImageFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.UploadImage(ctx, raw)
}
