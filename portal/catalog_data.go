package portal

// DefaultCatalog returns the bundled book dataset the portal ships with.
// Callers receive a fresh copy; mutating it does not affect later calls.
func DefaultCatalog() []Book {
	return []Book{
		{ID: 1, Title: "El Laberinto de los Espíritus", Author: "Carlos Ruiz Zafón", ISBN: "978-8408163397", Category: "Ficción", Available: true, Cover: "https://placehold.co/200x300/A5D6A7/4CAF50?text=Libro+1", Description: "El apasionante desenlace de la saga del Cementerio de los Libros Olvidados.", Type: Physical},
		{ID: 2, Title: "Sapiens: De animales a dioses", Author: "Yuval Noah Harari", ISBN: "978-6073128680", Category: "Historia", Available: false, Cover: "https://placehold.co/200x300/FFCC80/FF9800?text=Libro+2", Description: "Una breve historia de la humanidad, desde los primeros humanos hasta el presente.", Type: Physical},
		{ID: 3, Title: "Cien años de soledad", Author: "Gabriel García Márquez", ISBN: "978-0307474728", Category: "Ficción", Available: true, Cover: "https://placehold.co/200x300/81D4FA/03A9F4?text=Libro+3", Description: "La mítica novela que narra la historia de la familia Buendía en Macondo.", Type: Physical},
		{ID: 4, Title: "Principios de Programación", Author: "Ada Lovelace JR.", ISBN: "978-1234567890", Category: "Tecnología", Available: true, Cover: "https://placehold.co/200x300/CE93D8/9C27B0?text=Ebook+1", Description: "Fundamentos esenciales para aspirantes a desarrolladores.", Type: Ebook},
		{ID: 5, Title: "Cosmos", Author: "Carl Sagan", ISBN: "978-0345539434", Category: "Ciencia", Available: true, Cover: "https://placehold.co/200x300/EF9A9A/F44336?text=Libro+4", Description: "Un viaje inspirador a través del universo y nuestro lugar en él.", Type: Physical},
		{ID: 6, Title: "El Arte de la Guerra Digital", Author: "Sun Tzu Moderno", ISBN: "978-0987654321", Category: "Tecnología", Available: true, Cover: "https://placehold.co/200x300/FFF59D/FFEB3B?text=Ebook+2", Description: "Estrategias para el ciberespacio y la seguridad informática.", Type: Ebook},
		{ID: 7, Title: "Breve Historia del Tiempo", Author: "Stephen Hawking", ISBN: "978-0553380163", Category: "Ciencia", Available: true, Cover: "https://placehold.co/200x300/B2DFDB/009688?text=Libro+5", Description: "Del Big Bang a los agujeros negros, una obra maestra de la divulgación científica.", Type: Physical},
		{ID: 8, Title: "Diseño Web Adaptativo", Author: "Ethan Marcotte II", ISBN: "978-1111111111", Category: "Tecnología", Available: true, Cover: "https://placehold.co/200x300/C5E1A5/8BC34A?text=Ebook+3", Description: "Principios y prácticas para crear sitios web flexibles y accesibles.", Type: Ebook},
	}
}
