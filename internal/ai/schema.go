package ai

import (
	"google.golang.org/genai"

	"github.com/david/opportunity-finder/internal/models"
)

// field is one node of the opportunity schema. The same table produces the schema sent
// to the provider and the JSON Schema used to re-check its answer locally.
type field struct {
	name        string
	kind        genai.Type
	description string
	enum        []string
	min, max    float64 // zero means unbounded
	children    []field
}

const (
	minScore = 1
	maxScore = 10
)

var opportunityFields = []field{
	{name: "sector", kind: genai.TypeString,
		description: "La categoría amplia de la industria a la que pertenece el negocio."},
	{name: "businessType", kind: genai.TypeString,
		description: "Un tipo de negocio concreto dentro de la industria y el país indicados."},
	{name: "managerEmail", kind: genai.TypeString,
		description: "Correo de una persona con nombre propio (gerente, dueño o director), p. ej. 'nombre.apellido@empresa.com'. Nunca una dirección genérica como 'info@' o 'contacto@'."},
	{name: "urgentNeed", kind: genai.TypeString,
		description: "La necesidad de negocio más urgente y crítica de este tipo de empresa."},
	{name: "aiSolutionName", kind: genai.TypeString,
		description: "Nombre creativo para la aplicación basada en un LLM que atiende la necesidad."},
	{name: "aiSolutionDescription", kind: genai.TypeString,
		description: "Descripción breve de la solución basada en un LLM y de sus beneficios."},
	{name: "appCreationPrompt", kind: genai.TypeString,
		description: "Prompt detallado para que un desarrollador construya la aplicación: funciones principales, rol del LLM y datos del cliente requeridos."},
	{name: "proposalEmail", kind: genai.TypeObject,
		description: "Correo de propuesta comercial dirigido al gerente.",
		children: []field{
			{name: "subject", kind: genai.TypeString,
				description: "Asunto conciso, profesional y atractivo."},
			{name: "body", kind: genai.TypeString,
				description: "Cuerpo en párrafos cortos: problema, solución, beneficios, llamada a la acción y la firma indicada."},
		}},
	{name: "acceptanceProbability", kind: genai.TypeObject,
		description: "Estimación de la probabilidad de que la propuesta sea aceptada.",
		children: []field{
			{name: "rating", kind: genai.TypeString,
				description: "Una de: 'Alta', 'Media', 'Baja'.",
				enum:        ratingLiterals()},
			{name: "justification", kind: genai.TypeString,
				description: "Justificación breve basada en el poder adquisitivo o la capacidad de innovación del negocio."},
			{name: "score", kind: genai.TypeNumber,
				description: "Puntuación de 1 a 10 de la probabilidad de aceptación.",
				min:         minScore, max: maxScore},
		}},
	{name: "easeOfCreation", kind: genai.TypeNumber,
		description: "Facilidad de construir la solución, de 1 (muy difícil) a 10 (muy fácil).",
		min:         minScore, max: maxScore},
	{name: "opportunityForGain", kind: genai.TypeNumber,
		description: "Potencial de ganancia para quien construya la solución, de 1 a 10.",
		min:         minScore, max: maxScore},
}

// ResponseSchema is the provider-side schema: an array of opportunity objects.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: objectSchema("", opportunityFields),
	}
}

func objectSchema(description string, fields []field) *genai.Schema {
	s := &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties:  make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		s.Properties[f.name] = genaiSchema(f)
		s.Required = append(s.Required, f.name)
		s.PropertyOrdering = append(s.PropertyOrdering, f.name)
	}
	return s
}

func genaiSchema(f field) *genai.Schema {
	if f.kind == genai.TypeObject {
		return objectSchema(f.description, f.children)
	}
	s := &genai.Schema{
		Type:        f.kind,
		Description: f.description,
		Enum:        f.enum,
	}
	if len(f.enum) > 0 {
		s.Format = "enum"
	}
	if f.min != 0 || f.max != 0 {
		s.Minimum = genai.Ptr(f.min)
		s.Maximum = genai.Ptr(f.max)
	}
	return s
}

// itemValidationSchema is the JSON Schema twin of one ResponseSchema item, stricter
// where the provider cannot be: strings must be non-empty.
func itemValidationSchema() map[string]any {
	return jsonObject(opportunityFields)
}

func jsonObject(fields []field) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		props[f.name] = jsonField(f)
		required = append(required, f.name)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func jsonField(f field) map[string]any {
	switch f.kind {
	case genai.TypeObject:
		return jsonObject(f.children)
	case genai.TypeNumber, genai.TypeInteger:
		out := map[string]any{"type": "number"}
		if f.min != 0 || f.max != 0 {
			out["minimum"] = f.min
			out["maximum"] = f.max
		}
		return out
	default:
		out := map[string]any{"type": "string", "minLength": 1}
		if len(f.enum) > 0 {
			out["enum"] = f.enum
		}
		return out
	}
}

func ratingLiterals() []string {
	out := make([]string, len(models.Ratings))
	for i, r := range models.Ratings {
		out[i] = string(r)
	}
	return out
}
