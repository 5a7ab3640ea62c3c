package platform

// MethodCallDelegate handles the method calls of the channels it is attached to.
type MethodCallDelegate interface {
	HandleMethodCall(call MethodCall, result Result)
}

// Registrar gives plugins access to channel registration during startup.
type Registrar interface {
	// NewMethodChannel creates and registers a method channel.
	NewMethodChannel(name string) *MethodChannel

	// AddMethodCallDelegate makes delegate the sole handler of channel.
	AddMethodCallDelegate(delegate MethodCallDelegate, channel *MethodChannel)
}

// Plugin is a unit of platform functionality bound to one or more channels.
type Plugin interface {
	Register(registrar Registrar)
}

type defaultRegistrar struct{}

func (defaultRegistrar) NewMethodChannel(name string) *MethodChannel {
	return NewMethodChannel(name)
}

func (defaultRegistrar) AddMethodCallDelegate(delegate MethodCallDelegate, channel *MethodChannel) {
	channel.SetMethodCallHandler(delegate.HandleMethodCall)
}

// DefaultRegistrar returns the Registrar backed by the package channel registry.
func DefaultRegistrar() Registrar {
	return defaultRegistrar{}
}

// RegisterPlugins registers each plugin with the default registrar.
// Call it once at host startup; registrations live until the process exits.
func RegisterPlugins(plugins ...Plugin) {
	r := DefaultRegistrar()
	for _, p := range plugins {
		p.Register(r)
	}
}
