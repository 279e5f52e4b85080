package assistant

import (
	"fmt"
	"strings"
)

// DayPlan is one day of the canned weekly menu.
type DayPlan struct {
	Day    string `json:"day"`
	Dishes string `json:"dishes"`
}

func (d DayPlan) String() string {
	return fmt.Sprintf("%s: %s", d.Day, d.Dishes)
}

// WeeklyMenu is the menu every menu request returns.
var WeeklyMenu = []DayPlan{
	{Day: "Lunes", Dishes: "Pasta con verduras y pollo a la plancha"},
	{Day: "Martes", Dishes: "Ensalada de garbanzos y pescado al horno"},
	{Day: "Miércoles", Dishes: "Arroz con verduras y tortilla española"},
	{Day: "Jueves", Dishes: "Crema de calabacín y hamburguesas caseras"},
	{Day: "Viernes", Dishes: "Lentejas con verduras y pescado a la plancha"},
	{Day: "Sábado", Dishes: "Pizza casera con ensalada"},
	{Day: "Domingo", Dishes: "Paella de mariscos"},
}

// WeeklyListName and WeeklyListItems make up the list returned for grocery requests.
const WeeklyListName = "Lista semanal"

var WeeklyListItems = []string{
	"Pasta",
	"Arroz",
	"Garbanzos",
	"Lentejas",
	"Pollo",
	"Pescado blanco",
	"Carne picada",
	"Mariscos",
	"Calabacín",
	"Tomates",
	"Cebolla",
	"Pimiento",
	"Lechuga",
	"Huevos",
	"Leche",
	"Queso",
	"Pan",
	"Aceite de oliva",
}

// MenuListName and MenuListItems are derived from WeeklyMenu when the user
// confirms a staged menu.
const MenuListName = "Lista para menú semanal"

var MenuListItems = []string{
	"Pasta",
	"Pollo",
	"Verduras variadas",
	"Garbanzos",
	"Pescado",
	"Arroz",
	"Huevos",
	"Patatas",
	"Calabacín",
	"Carne picada",
	"Lentejas",
	"Ingredientes para pizza",
	"Mariscos",
}

const (
	Greeting = "¡Hola! Soy tu asistente virtual. Puedo ayudarte a crear menús y listas de compra. ¿En qué puedo ayudarte hoy?"

	HelpText = "Puedo ayudarte a crear menús semanales y listas de compra. Prueba a pedirme algo como 'Crea un menú semanal' o 'Haz una lista de la compra'."

	FallbackText = "Lo siento, ha ocurrido un error al procesar tu solicitud. Por favor, inténtalo de nuevo."

	NoSupermarketText = "Primero necesitas añadir un supermercado para poder guardar la lista."

	NothingStagedText = "Lo siento, no tengo ninguna lista o menú generado para guardar. ¿Quieres que te ayude a crear uno?"

	MenuListCreatedText = "He creado una lista de la compra basada en el menú. ¿Quieres guardarla en alguno de tus supermercados?"

	menuIntro     = "Aquí tienes un menú semanal que he preparado para ti:"
	menuQuestion  = "¿Quieres que cree una lista de la compra basada en este menú?"
	listIntro     = "He creado una lista de compra para ti:"
	listQuestion  = "¿Quieres guardar esta lista en alguno de tus supermercados?"
	savedTemplate = "¡Perfecto! He guardado la lista \"%s\" en el supermercado \"%s\"."
)

func menuLines() string {
	lines := make([]string, len(WeeklyMenu))
	for i, d := range WeeklyMenu {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

func itemLines(items []string) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(it)
	}
	return sb.String()
}

// MenuText is the menu reply of the stateless endpoint.
func MenuText() string {
	return menuIntro + "\n\n" + menuLines()
}

// ListText is the grocery list reply of the stateless endpoint.
func ListText() string {
	return listIntro + "\n\n" + itemLines(WeeklyListItems)
}

func savedText(listName, supermarketName string) string {
	return fmt.Sprintf(savedTemplate, listName, supermarketName)
}
