package session

// Level is a notice's severity.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Kind classifies a notice.
type Kind string

const (
	KindDemo            Kind = "demo" // no wallet provider
	KindConnected       Kind = "connected"
	KindUserRejected    Kind = "user_rejected"    // 4001 from the wallet
	KindConnectionError Kind = "connection_error" // any other connect failure
	KindDisconnected    Kind = "disconnected"
	KindNetworkMismatch Kind = "network_mismatch" // connected on a non-target chain
	KindNetworkSwitched Kind = "network_switched"
	KindNetworkError    Kind = "network_error"   // switch failed
	KindNetworkChanged  Kind = "network_changed" // chainChanged event
	KindAccountChanged  Kind = "account_changed" // accountsChanged event
	KindDataFallback    Kind = "data_fallback"   // contract data served from defaults
)

// Notice is a user-facing, non-blocking notification.
type Notice struct {
	Kind    Kind
	Level   Level
	Title   string
	Message string
}

// Notifier receives session notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
