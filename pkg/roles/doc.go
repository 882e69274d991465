// Package roles provides the effects behind SCO operations.
//
// A Provider inspects an operation descriptor and, when it handles that kind
// of operation, returns an sco.Operation with an effect attached. Product
// runs a list of providers over all operation descriptors of an MDIB and
// registers the resulting operations:
//
//	p := roles.NewProduct(registry, roles.Config{},
//	    roles.NewSetValueProvider(nil),
//	    roles.NewSetStringProvider(nil),
//	    roles.NewLocationContextProvider(nil),
//	)
//	if err := p.Init(ctx); err != nil {
//	    return err
//	}
//
// Operations no provider claims are registered without an effect; they finish
// immediately and only record their calls.
package roles
