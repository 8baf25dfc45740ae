package storage

// Templates combines reference checks with the upload store, which is the surface the
// chat flow needs.
type Templates struct {
	*Resolver
	*Uploads
}

func NewTemplates(r *Resolver, u *Uploads) *Templates {
	return &Templates{Resolver: r, Uploads: u}
}
