package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger pushes pipeline results to connected browser sessions.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Broadcast sends payload to every connected session.
	Broadcast(payload interface{})

	// Start the server
	Start() error

	// Stop the server gracefully
	Stop() error
}
