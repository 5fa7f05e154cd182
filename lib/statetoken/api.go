package statetoken

//go:generate mockgen -source=api.go -package statetoken -destination generator_mock.go Generator
type Generator interface {
	Create() (string, error)
}
