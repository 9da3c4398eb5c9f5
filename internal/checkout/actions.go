package checkout

// Action identifies one of the checkout screens.
type Action string

const (
	ActionCardDetails    Action = "card_details"
	ActionPaymentOptions Action = "payment_options"
	ActionPaymentMethods Action = "payment_methods"
	ActionFields         Action = "fields"
)

// Actions lists the screens in home screen order.
var Actions = []Action{ActionPaymentOptions, ActionFields, ActionCardDetails, ActionPaymentMethods}

type actionInfo struct {
	name  string
	title string
	verb  string
	// path is shown in DNS diagnostics; empty means no URL hint.
	path string
}

var actionInfos = map[Action]actionInfo{
	ActionCardDetails:    {"Card Details", "Card Details Response", "get card details", "card-details"},
	ActionPaymentOptions: {"Payment Options", "Payment Options Response", "get payment options", "payment-options"},
	ActionPaymentMethods: {"Payment Methods", "Payment Methods Response", "get payment methods", "payment-methods"},
	ActionFields:         {"Fields", "Fields Response", "tokenize payment method", ""},
}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actionInfos[a]
	return a, ok
}

// Name is the screen label.
func (a Action) Name() string { return actionInfos[a].name }

// Title is the heading of the action's response view.
func (a Action) Title() string { return actionInfos[a].title }

// Verb completes "Failed to ..." messages.
func (a Action) Verb() string { return actionInfos[a].verb }
