package seed

import "catalog-service/internal/model"

type categoryRow struct {
	Name        string
	Description string
	Order       int
}

type brandRow struct {
	Name        string
	Description string
}

type productRow struct {
	Name        string
	Category    string
	Brand       string
	Short       string
	Description string
	Size        model.Size
	Firmness    model.Firmness
	HeightCM    int
	Material    string
	Warranty    int
	Price       string
	Discount    string
	Stock       int
	WeightKG    string
	Featured    bool
}

type testimonialRow struct {
	Author  string
	City    string
	Comment string
	Rating  int
	Product string
}

type contactRow struct {
	Name     string
	Email    string
	Phone    string
	City     string
	Subject  model.Subject
	Message  string
	Resolved bool
}

type subscriberRow struct {
	Email string
	Name  string
}

var categories = []categoryRow{
	{"Colchones Matrimoniales", "Colchones para parejas que buscan comodidad y espacio. Tamaños Queen y King.", 1},
	{"Colchones Individuales", "Perfectos para habitaciones individuales. Tamaños sencillo y semidoble.", 2},
	{"Colchones Premium", "Nuestra línea de lujo con materiales premium y tecnología avanzada.", 3},
	{"Colchones Ortopédicos", "Diseñados especialmente para el cuidado de la columna vertebral.", 4},
}

var brands = []brandRow{
	{"TapiSuave", "Nuestra marca principal de colchones de calidad superior."},
	{"DreamComfort", "Línea premium para el descanso perfecto."},
	{"OrthoRest", "Especialistas en colchones ortopédicos y terapéuticos."},
	{"EcoSleep", "Colchones ecológicos fabricados con materiales naturales."},
}

var products = []productRow{
	{
		Name: "Colchón King TapiSuave Premium", Category: "Colchones Matrimoniales", Brand: "TapiSuave",
		Short:       "Colchón King Size de lujo con memory foam y tecnología de enfriamiento.",
		Description: "<p>Memory foam de alta densidad sobre resortes ensacados, con funda hipoalergénica.</p>",
		Size:        model.SizeKing, Firmness: model.FirmnessMedium, HeightCM: 30,
		Material: "Memory Foam Premium", Warranty: 10,
		Price: "2500000", Discount: "1999000", Stock: 15, WeightKG: "45.5", Featured: true,
	},
	{
		Name: "Colchón Queen DreamComfort Deluxe", Category: "Colchones Matrimoniales", Brand: "DreamComfort",
		Short:       "Colchón Queen con tecnología de soporte zonal y materiales premium.",
		Description: "<p>Soporte zonal en látex natural con gel refrescante.</p>",
		Size:        model.SizeQueen, Firmness: model.FirmnessFirm, HeightCM: 28,
		Material: "Látex Natural con Gel", Warranty: 8,
		Price: "1800000", Discount: "1440000", Stock: 22, WeightKG: "38.0", Featured: true,
	},
	{
		Name: "Colchón Doble TapiSuave Classic", Category: "Colchones Matrimoniales", Brand: "TapiSuave",
		Short:       "Nuestro bestseller. Calidad comprobada y precio accesible.",
		Description: "<p>Resortes Bonnell con acolchado suave y borde reforzado.</p>",
		Size:        model.SizeDouble, Firmness: model.FirmnessMedium, HeightCM: 24,
		Material: "Resortes Bonnell + Espuma", Warranty: 6,
		Price: "980000", Discount: "784000", Stock: 40, WeightKG: "32.0", Featured: true,
	},
	{
		Name: "Colchón Semidoble Comfort Plus", Category: "Colchones Individuales", Brand: "TapiSuave",
		Short:       "Ideal para habitaciones juveniles y de huéspedes. Excelente relación calidad-precio.",
		Description: "<p>Espuma de alta densidad con pillow top y funda desmontable.</p>",
		Size:        model.SizeThreeQuarter, Firmness: model.FirmnessMedium, HeightCM: 25,
		Material: "Espuma HR + Pillow Top", Warranty: 5,
		Price: "899000", Stock: 35, WeightKG: "25.0",
	},
	{
		Name: "Colchón Sencillo EcoSleep Natural", Category: "Colchones Individuales", Brand: "EcoSleep",
		Short:       "Colchón ecológico fabricado con materiales 100% naturales y sostenibles.",
		Description: "<p>Látex natural y fibra de coco, sin químicos nocivos.</p>",
		Size:        model.SizeSingle, Firmness: model.FirmnessFirm, HeightCM: 22,
		Material: "Látex Natural + Fibra de Coco", Warranty: 7,
		Price: "750000", Discount: "675000", Stock: 28, WeightKG: "18.5", Featured: true,
	},
	{
		Name: "Colchón Sencillo Basic Comfort", Category: "Colchones Individuales", Brand: "TapiSuave",
		Short:       "Opción económica sin comprometer la calidad. Ideal para habitaciones auxiliares.",
		Description: "<p>Espuma HR de densidad media.</p>",
		Size:        model.SizeSingle, Firmness: model.FirmnessFirm, HeightCM: 20,
		Material: "Espuma HR Densidad Media", Warranty: 3,
		Price: "450000", Stock: 50, WeightKG: "15.0",
	},
	{
		Name: "Colchón King DreamComfort Luxury", Category: "Colchones Premium", Brand: "DreamComfort",
		Short:       "La experiencia de lujo definitiva. Tecnología de punta y materiales exclusivos.",
		Description: "<p>Memory foam sobre resortes de titanio.</p>",
		Size:        model.SizeKing, Firmness: model.FirmnessMedium, HeightCM: 35,
		Material: "Memory Foam + Titanium Springs", Warranty: 15,
		Price: "4500000", Discount: "3600000", Stock: 8, WeightKG: "55.0", Featured: true,
	},
	{
		Name: "Colchón King EcoSleep Bamboo", Category: "Colchones Premium", Brand: "EcoSleep",
		Short:       "Lujo sostenible con fibras de bamboo y materiales ecológicos.",
		Description: "<p>Fibras de bamboo y látex orgánico.</p>",
		Size:        model.SizeKing, Firmness: model.FirmnessMedium, HeightCM: 30,
		Material: "Bamboo + Látex Orgánico", Warranty: 9,
		Price: "3500000", Discount: "2800000", Stock: 10, WeightKG: "48.0", Featured: true,
	},
	{
		Name: "Colchón Queen OrthoRest Terapéutico", Category: "Colchones Ortopédicos", Brand: "OrthoRest",
		Short:       "Diseñado por especialistas para el cuidado de la columna vertebral.",
		Description: "<p>Espuma ortopédica HR de soporte extra firme.</p>",
		Size:        model.SizeQueen, Firmness: model.FirmnessExtraFirm, HeightCM: 28,
		Material: "Espuma Ortopédica HR", Warranty: 10,
		Price: "2100000", Discount: "1890000", Stock: 18, WeightKG: "40.0", Featured: true,
	},
	{
		Name: "Colchón Queen Premium OrthoRest Pro", Category: "Colchones Ortopédicos", Brand: "OrthoRest",
		Short:       "Tecnología avanzada para problemas de espalda. Recomendado por especialistas.",
		Description: "<p>Memory foam médico con gel.</p>",
		Size:        model.SizeQueen, Firmness: model.FirmnessExtraFirm, HeightCM: 33,
		Material: "Memory Foam Médico + Gel", Warranty: 12,
		Price: "2800000", Discount: "2240000", Stock: 14, WeightKG: "44.0", Featured: true,
	},
}

var testimonials = []testimonialRow{
	{"María González", "Bogotá", "Increíble la diferencia que hizo el colchón en mi descanso. Ya no me levanto con dolor de espalda.", 5, "Colchón King TapiSuave Premium"},
	{"Carlos Rodríguez", "Medellín", "Excelente servicio al cliente y el colchón llegó en perfecto estado.", 5, "Colchón Queen DreamComfort Deluxe"},
	{"Ana Patricia Herrera", "Cali", "Compré el colchón para mi hijo adolescente y ha sido una excelente inversión.", 4, "Colchón Semidoble Comfort Plus"},
	{"Roberto Martínez", "Barranquilla", "Como persona con problemas de columna, el soporte es perfecto.", 5, "Colchón Queen OrthoRest Terapéutico"},
	{"Lucía Fernández", "Bucaramanga", "Me encanta que sea un producto ecológico sin sacrificar comodidad.", 4, "Colchón King EcoSleep Bamboo"},
	{"Diego Vargas", "Pereira", "Relación calidad-precio excelente. Es mi segundo colchón de la marca.", 4, "Colchón Doble TapiSuave Classic"},
}

var contacts = []contactRow{
	{"Jennifer López", "jennifer.lopez@email.com", "3201234567", "Bogotá", model.SubjectProductQuestion, "Estoy interesada en los colchones ortopédicos. ¿Qué me recomiendan para lumbalgia?", false},
	{"Alexander García", "alex.garcia@empresa.com", "3156789012", "Medellín", model.SubjectQuote, "Necesito cotización para equipar un hotel de 50 habitaciones.", true},
	{"Miguel Torres", "miguel.torres@hotmail.com", "3124567890", "Barranquilla", model.SubjectShipping, "¿Realizan envíos a zonas rurales?", false},
}

var subscribers = []subscriberRow{
	{"cliente1@gmail.com", "Andrea Sánchez"},
	{"cliente2@hotmail.com", "José Mendoza"},
	{"cliente3@yahoo.com", "Laura Peña"},
	{"cliente4@outlook.com", "Carlos Restrepo"},
	{"cliente5@empresa.co", "Diana Ospina"},
}
