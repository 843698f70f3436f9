// Package models defines the core data structures for user sessions,
// registrations, and profile updates exchanged with the SaveLook API.
package models

// UserSession is the authenticated user's profile snapshot.
//
// Correo is the sole stable key across the remote API: every update
// call is addressed by it, so it must not change once set. The JSON
// field names follow the wire format of the backend.
type UserSession struct {
	// Correo is the user's email and the record's identity.
	Correo string `json:"correo"`
	// Password is opaque and only used for the initial credential check.
	Password string `json:"password,omitempty"`
	// Nombre is the user's given name.
	Nombre string `json:"nombre"`
	// Apellidos is the user's surname(s).
	Apellidos string `json:"apellidos"`
	// Edad is the user's age in years.
	Edad int `json:"edad"`
	// Estado, Municipio, Ciudad and CP are administrative-division fields.
	Estado    string `json:"estado"`
	Municipio string `json:"municipio"`
	Ciudad    string `json:"ciudad"`
	CP        string `json:"cp"`
	// TipoSangre is a short blood type code, e.g. "O+".
	TipoSangre string `json:"tipoSangre"`
	// DescripcionLook is a free-text self description.
	DescripcionLook string `json:"descripcion_look"`
	// ImagenLook is either empty, a remote URI, or a base64-encoded blob.
	ImagenLook string `json:"imagen_look,omitempty"`
}

// UserPatch is a partial update to a UserSession. Nil fields are left
// untouched by a merge; non-nil fields overwrite the session's value.
type UserPatch struct {
	Nombre          *string `json:"nombre,omitempty"`
	Apellidos       *string `json:"apellidos,omitempty"`
	Edad            *int    `json:"edad,omitempty"`
	Estado          *string `json:"estado,omitempty"`
	Municipio       *string `json:"municipio,omitempty"`
	Ciudad          *string `json:"ciudad,omitempty"`
	CP              *string `json:"cp,omitempty"`
	TipoSangre      *string `json:"tipoSangre,omitempty"`
	DescripcionLook *string `json:"descripcion_look,omitempty"`
	ImagenLook      *string `json:"imagen_look,omitempty"`
}

// Apply merges p into s, field by field. Fields absent from the patch
// are retained; when patches are applied in sequence, later ones win.
func (p UserPatch) Apply(s *UserSession) {
	if p.Nombre != nil {
		s.Nombre = *p.Nombre
	}
	if p.Apellidos != nil {
		s.Apellidos = *p.Apellidos
	}
	if p.Edad != nil {
		s.Edad = *p.Edad
	}
	if p.Estado != nil {
		s.Estado = *p.Estado
	}
	if p.Municipio != nil {
		s.Municipio = *p.Municipio
	}
	if p.Ciudad != nil {
		s.Ciudad = *p.Ciudad
	}
	if p.CP != nil {
		s.CP = *p.CP
	}
	if p.TipoSangre != nil {
		s.TipoSangre = *p.TipoSangre
	}
	if p.DescripcionLook != nil {
		s.DescripcionLook = *p.DescripcionLook
	}
	if p.ImagenLook != nil {
		s.ImagenLook = *p.ImagenLook
	}
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string { return &s }

// Int returns a pointer to n, for building patches inline.
func Int(n int) *int { return &n }

// Registration is the full payload POSTed to /up_user. It carries the
// verification code alongside the profile fields; the server rejects
// the registration when the code does not match the one it issued.
type Registration struct {
	Correo          string `json:"correo"`
	Password        string `json:"password"`
	Codigo          string `json:"codigo"`
	Nombre          string `json:"nombre"`
	Apellidos       string `json:"apellidos"`
	Edad            string `json:"edad"`
	Estado          string `json:"estado"`
	Municipio       string `json:"municipio"`
	Ciudad          string `json:"ciudad"`
	CP              string `json:"cp"`
	TipoSangre      string `json:"tipoSangre"`
	DescripcionLook string `json:"descripcion_look"`
	ImagenLook      string `json:"imagen_look,omitempty"`
}
