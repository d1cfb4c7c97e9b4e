package intake

// Warning identifies why a submission event was rejected. The zero value means
// no warning.
type Warning string

const (
	WarningNone             Warning = ""
	WarningRepeatedSong     Warning = "repeated_song"
	WarningUnwantedChannel  Warning = "unwanted_channel"
	WarningInvalidMessage   Warning = "invalid_message"
	WarningDeleteDispatched Warning = "delete_dispatched_song"
	WarningEditDispatched   Warning = "edit_dispatched_song"
	WarningDeleteQueued     Warning = "delete_queued_song"
	WarningEditQueued       Warning = "edit_queued_song"
)

const unknownWarningMessage = "Ha ocurrido un error desconocido, consulta a alguno de los administradores."

var warningMessages = map[Warning]string{
	WarningRepeatedSong:     "Error: La canción ya se encuentra en la fila de tu equipo. Por favor escoge otra.",
	WarningUnwantedChannel:  "Error: No puedes escribir en este canal.",
	WarningInvalidMessage:   "Error: El mensaje enviado no es un link de Youtube, o no tiene el formato correcto.",
	WarningDeleteDispatched: "Error: La canción ya se ha enviado a la playlist, no se puede eliminar mas.",
	WarningEditDispatched:   "Error: La canción ya se ha enviado a la playlist, no se puede editar mas.",
	WarningDeleteQueued:     "Error: La canción ya está en la fila de reproducción, no se puede eliminar mas.",
	WarningEditQueued:       "Error: La canción ya está en la fila de reproducción, no se puede editar mas.",
}

// Message returns the text shown to the submitting team.
func (w Warning) Message() string {
	if w == WarningNone {
		return ""
	}
	if msg, ok := warningMessages[w]; ok {
		return msg
	}
	return unknownWarningMessage
}
