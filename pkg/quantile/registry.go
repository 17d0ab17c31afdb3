package quantile

import "fmt"

// methods indexes every concrete strategy by name.
var methods = map[string]Method{
	IndexAbove.Name():                 IndexAbove,
	NearestIndex.Name():               NearestIndex,
	SampleInterpolation.Name():        SampleInterpolation,
	SamplePlusOneInterpolation.Name(): SamplePlusOneInterpolation,
	MidwayInterpolation.Name():        MidwayInterpolation,
	ExcelInterpolation.Name():         ExcelInterpolation,
}

// MethodByName returns the method with the given name.
// Used to wire methods from configuration and CLI flags.
func MethodByName(name string) (Method, error) {
	m, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown quantile method %q", name)
	}
	return m, nil
}

// MethodNames returns the names of all registered methods, in no
// particular order.
func MethodNames() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	return names
}
