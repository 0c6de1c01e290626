package catalog

// PitayaNails is the salon the service is deployed for.
var PitayaNails = Salon{
	Name:          "Pitaya Nails",
	Currency:      "MXN",
	WhatsAppLink:  "https://wa.me/529841123411",
	InstagramLink: "https://www.instagram.com/nailstation_cun",
	BookingLink:   "https://calendar.app.google/uzzcfsLW9x4WcCAi6",
}

// DefaultServices is the published service menu.
var DefaultServices = []Service{
	{ID: "mani-classic", Name: "Manicura Clásica", Description: "Cuidado completo de uñas y cutículas con esmaltado tradicional.", Duration: 45, Price: 350, Category: "Manicura", ImageURL: "https://picsum.photos/seed/manicure/400/300"},
	{ID: "pedi-spa", Name: "Pedicura Spa", Description: "Relajante pedicura con exfoliación, masaje y esmaltado perfecto.", Duration: 60, Price: 550, Category: "Pedicura", ImageURL: "https://picsum.photos/seed/pedicure/400/300"},
	{ID: "acrilicas", Name: "Uñas Acrílicas Esculturales", Description: "Creación de uñas esculturales con acrílico, personalizadas a tu gusto.", Duration: 120, Price: 850, Category: "Uñas Esculturales", ImageURL: "https://picsum.photos/seed/acrylic/400/300"},
	{ID: "gel", Name: "Esmaltado en Gel (Gelish)", Description: "Color duradero y brillante por hasta 3 semanas.", Duration: 60, Price: 450, Category: "Manicura", ImageURL: "https://picsum.photos/seed/gelish/400/300"},
	{ID: "nail-art", Name: "Nail Art Avanzado", Description: "Diseños a mano alzada, pedrería y efectos especiales (precio por uña).", Duration: 30, Price: 100, Category: "Nail Art", ImageURL: "https://picsum.photos/seed/nailart/400/300", IsCustomizable: true, PricePerUnit: true, DurationPerUnit: true},
	{ID: "spa-manos", Name: "Spa de Manos", Description: "Tratamiento rejuvenecedor con exfoliación profunda y mascarilla hidratante.", Duration: 40, Price: 400, Category: "Spa", ImageURL: "https://picsum.photos/seed/handspa/400/300"},
}

// DefaultTeam is the salon staff. Weekdays use Sunday = 0.
var DefaultTeam = []TeamMember{
	{ID: 1, Name: "Lily", Role: "Dueña / Nail Artist Principal", Specialty: "Especialista en uñas esculturales y diseño 3D.", ImageURL: "https://picsum.photos/seed/lily/400/400", UnavailableDays: []int{0}},
	{ID: 2, Name: "Sofía", Role: "Técnica en Uñas", Specialty: "Experta en manicura perfecta y esmaltado en gel.", ImageURL: "https://picsum.photos/seed/sofia/400/400", UnavailableDays: []int{0, 3}},
	{ID: 3, Name: "Valeria", Role: "Técnica en Uñas y Pedicurista", Specialty: "Maestra de la pedicura spa y diseños creativos.", ImageURL: "https://picsum.photos/seed/valeria/400/400", UnavailableDays: []int{0, 1}},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(PitayaNails, DefaultServices, DefaultTeam)
	if err != nil {
		panic(err)
	}
	return c
}
