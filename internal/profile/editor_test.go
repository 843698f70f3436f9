package profile

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/models"
	"github.com/eduarcas/savelook/internal/session"
)

// fakeClient implements api.Client and records update calls.
type fakeClient struct {
	updateErr error

	mu          sync.Mutex
	updateCalls int
	lastCorreo  string
	lastPatch   models.UserPatch
}

func (f *fakeClient) Users(ctx context.Context) ([]models.UserSession, error) { return nil, nil }

func (f *fakeClient) UserByEmail(ctx context.Context, correo string) (*models.UserSession, error) {
	return nil, nil
}

func (f *fakeClient) SendVerificationCode(ctx context.Context, correo string) error { return nil }

func (f *fakeClient) CreateUser(ctx context.Context, reg models.Registration) error { return nil }

func (f *fakeClient) UpdateUser(ctx context.Context, correo string, patch models.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastCorreo = correo
	f.lastPatch = patch
	return f.updateErr
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateCalls
}

func newStore(t *testing.T, user *models.UserSession) *session.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	s := session.NewStore(session.NewFileBackend(path), zap.NewNop())
	if user != nil {
		s.Set(context.Background(), *user)
	}
	return s
}

func seededUser() *models.UserSession {
	return &models.UserSession{
		Correo:     "a@b.com",
		Nombre:     "Ana",
		Apellidos:  "García",
		Edad:       30,
		Estado:     "CDMX",
		TipoSangre: "O+",
		ImagenLook: "oldimage",
	}
}

func TestNewEditor_BufferFromSession(t *testing.T) {
	e := NewEditor(newStore(t, seededUser()), &fakeClient{}, zap.NewNop())

	f := e.Form()
	assert.Equal(t, "Ana", f.Nombre)
	assert.Equal(t, "30", f.Edad)
	assert.Equal(t, "O+", f.TipoSangre)
	assert.Equal(t, "oldimage", e.Image())
}

func TestNewEditor_EmptySession(t *testing.T) {
	e := NewEditor(newStore(t, nil), &fakeClient{}, zap.NewNop())
	assert.Equal(t, Form{}, e.Form())
}

func TestSave_NonNumericAge(t *testing.T) {
	client := &fakeClient{}
	store := newStore(t, seededUser())
	e := NewEditor(store, client, zap.NewNop())

	f := e.Form()
	f.Edad = "abc"
	e.SetForm(f)

	err := e.Save(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"edad"}, verr.Fields)
	assert.Equal(t, 0, client.calls())

	// Store untouched.
	assert.Equal(t, 30, store.Current().Edad)
}

func TestSave_ListsAllOffendingFields(t *testing.T) {
	client := &fakeClient{}
	e := NewEditor(newStore(t, seededUser()), client, zap.NewNop())

	e.SetForm(Form{Nombre: "  ", Apellidos: "", Edad: "x", Estado: ""})

	err := e.Save(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"nombre", "apellidos", "edad", "estado"}, verr.Fields)
	assert.Equal(t, 0, client.calls())
}

func TestSave_CoercesAndTrims(t *testing.T) {
	client := &fakeClient{}
	store := newStore(t, seededUser())
	e := NewEditor(store, client, zap.NewNop())

	e.SetForm(Form{
		Nombre:     "  Ana María ",
		Apellidos:  "García",
		Edad:       "34",
		Estado:     "CDMX ",
		TipoSangre: " ab- ",
	})

	require.NoError(t, e.Save(context.Background()))
	require.Equal(t, 1, client.calls())
	assert.Equal(t, "a@b.com", client.lastCorreo)
	assert.Equal(t, "Ana María", *client.lastPatch.Nombre)
	assert.Equal(t, 34, *client.lastPatch.Edad)
	assert.Equal(t, "CDMX", *client.lastPatch.Estado)
	assert.Equal(t, "AB-", *client.lastPatch.TipoSangre)

	got := store.Current()
	assert.Equal(t, 34, got.Edad)
	assert.Equal(t, "AB-", got.TipoSangre)
	// Email never changes: updates are keyed by it.
	assert.Equal(t, "a@b.com", got.Correo)
}

func TestSave_RemoteFailureLeavesStore(t *testing.T) {
	client := &fakeClient{updateErr: errors.New("no se pudo actualizar")}
	store := newStore(t, seededUser())
	e := NewEditor(store, client, zap.NewNop())

	f := e.Form()
	f.Nombre = "Cambiada"
	e.SetForm(f)

	require.Error(t, e.Save(context.Background()))
	assert.Equal(t, "Ana", store.Current().Nombre)
	// Buffer keeps the user's edits for a retry.
	assert.Equal(t, "Cambiada", e.Form().Nombre)
}

func TestUploadImage(t *testing.T) {
	client := &fakeClient{}
	store := newStore(t, seededUser())
	e := NewEditor(store, client, zap.NewNop())

	raw := []byte{0xff, 0xd8, 0xff}
	require.NoError(t, e.UploadImage(context.Background(), raw))

	encoded := base64.StdEncoding.EncodeToString(raw)
	require.Equal(t, 1, client.calls())
	require.NotNil(t, client.lastPatch.ImagenLook)
	assert.Equal(t, encoded, *client.lastPatch.ImagenLook)
	// Image-only patch: no profile fields travel with it.
	assert.Nil(t, client.lastPatch.Nombre)

	assert.Equal(t, encoded, e.Image())
	assert.Equal(t, encoded, store.Current().ImagenLook)
}

func TestUploadImage_FailureKeepsPrevious(t *testing.T) {
	client := &fakeClient{updateErr: errors.New("upload failed")}
	store := newStore(t, seededUser())
	e := NewEditor(store, client, zap.NewNop())

	require.Error(t, e.UploadImage(context.Background(), []byte("img")))
	assert.Equal(t, "oldimage", e.Image())
	assert.Equal(t, "oldimage", store.Current().ImagenLook)
}

// Save and UploadImage may run concurrently; neither whole update may
// be lost in the session store.
func TestSaveAndUploadConcurrently(t *testing.T) {
	client := &fakeClient{}
	store := newStore(t, seededUser())
	e := NewEditor(store, client, zap.NewNop())

	f := e.Form()
	f.Nombre = "Anita"
	e.SetForm(f)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = e.Save(context.Background())
	}()
	go func() {
		defer wg.Done()
		_ = e.UploadImage(context.Background(), []byte("img"))
	}()
	wg.Wait()

	got := store.Current()
	assert.Equal(t, "Anita", got.Nombre)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), got.ImagenLook)
}
