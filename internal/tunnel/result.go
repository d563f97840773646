package tunnel

// Kind classifies why an operation failed. It is internal bookkeeping (and
// test surface); the JSON boundary only ever carries success + message.
type Kind string

const (
	KindNone         Kind = ""
	KindValidation   Kind = "validation"
	KindAuthRequired Kind = "auth_required"
	KindProvider     Kind = "provider"
)

// Result is the uniform outcome of every mutating tunnel operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
}

func okResult(message string) Result {
	return Result{Success: true, Message: message}
}

func validationResult(message string) Result {
	return Result{Success: false, Message: message, Kind: KindValidation}
}

func authRequiredResult() Result {
	return Result{
		Success: false,
		Message: "not authenticated with the tunnel provider; log in first",
		Kind:    KindAuthRequired,
	}
}

func providerResult(message string) Result {
	return Result{Success: false, Message: message, Kind: KindProvider}
}
