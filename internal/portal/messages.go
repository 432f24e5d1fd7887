package portal

// Status lines.
const (
	StatusSynthesizing   = "Sintetizando..."
	StatusDone           = "Listo ✅"
	StatusQueryingVoices = "Consultando voces (Piper)..."
	StatusVoicesReady    = "Voces instaladas ✅"

	// ErrorPrefix marks a status line as a failure.
	ErrorPrefix = "❌ "
)

// Alerts of the standalone preset action.
const (
	AlertPresetFieldsMissing = "Necesitas User ID y un preset."
	AlertPresetSaved         = "Preset guardado para "
	AlertPresetSaveFailed    = "Error guardando preset: "
)
