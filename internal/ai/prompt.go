package ai

import (
	"fmt"

	"github.com/david/opportunity-finder/internal/config"
)

// BuildOpportunityPrompt renders the analyst instruction for one industry/country pair.
// Both inputs are embedded verbatim.
func BuildOpportunityPrompt(profile config.Profile, industry, country string) string {
	signature := profile.Sender.Name
	if profile.Sender.Title != "" {
		signature += ", " + profile.Sender.Title
	}

	return fmt.Sprintf(`Eres un analista de negocios experto y arquitecto de soluciones de IA basadas en Modelos de Lenguaje Grandes (LLM).
Identifica %[1]d oportunidades de negocio distintas en la industria '%[2]s' en '%[3]s'. Prioriza solo las que tengan una probabilidad de aceptación alta.

Para cada oportunidad sigue estos pasos en orden:
1. Sector y tipo de negocio: indica el sector amplio y un tipo de negocio concreto con recursos y disposición para adoptar IA.
2. Correo del responsable: da la dirección de una persona concreta (gerente, dueño o director), por ejemplo 'nombre.apellido@negocio.com'. No uses direcciones genéricas como 'info@', 'contacto@' o 'ventas@'.
3. Necesidad urgente: describe el problema más crítico y urgente de ese negocio, con suficiente impacto para justificar una inversión en tecnología.
4. Solución con LLM: propone una solución práctica y realizable hoy con un LLM (asistentes conversacionales, análisis de texto, generación de contenido, preguntas y respuestas sobre documentos). Considera que puede necesitar datos privados del cliente, como catálogos, historiales o documentos internos. Dale un nombre creativo y una descripción breve.
5. Prompt de desarrollo: escribe un prompt detallado para un desarrollador que explique cómo construir la aplicación, el rol del LLM, los datos del cliente que necesita y las funciones clave.
6. Correo de propuesta: crea 'subject' y 'body' para un correo persuasivo al responsable.
   - subject: breve y relevante, por ejemplo "Propuesta de IA para [necesidad] en [tipo de negocio]".
   - body: presenta la necesidad detectada, la solución por su nombre, sus beneficios y una llamada a la acción para agendar una reunión. Tono de consultor experto, en párrafos cortos separados por saltos de línea. Termina exactamente con esta firma:
     Atentamente,
     %[4]s
     %[5]s
7. Puntuaciones: asigna 'easeOfCreation' y 'opportunityForGain' entre 1 y 10, y en 'acceptanceProbability' una calificación ('Alta', 'Media' o 'Baja'), una puntuación 'score' entre 1 y 10 y una justificación breve basada en el poder adquisitivo y la capacidad de innovación del negocio.

Devuelve únicamente un array JSON válido de %[1]d objetos conforme al esquema proporcionado, sin texto introductorio ni formato markdown.`,
		profile.Count, industry, country, signature, profile.Sender.URL)
}
