package channel

const (
	// DefaultBucket holds the installation's shared state.
	DefaultBucket = "XBAR_STATE"

	// KeyVector is the single shared record both surfaces agree on.
	KeyVector = "installation.vector"
)
