package fee

// Method is a way of paying offered by the payment flow.
type Method string

const (
	MethodUPI        Method = "upi"
	MethodCard       Method = "card"
	MethodNetBanking Method = "netbanking"
	MethodWallet     Method = "wallet"
)

type MethodInfo struct {
	ID          Method `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"` // recorded on transactions
	Description string `json:"description"`
}

var Methods = []MethodInfo{
	{ID: MethodUPI, Name: "UPI", Label: "UPI", Description: "Google Pay, PhonePe, BHIM"},
	{ID: MethodCard, Name: "Credit/Debit Card", Label: "Credit Card", Description: "Visa, Mastercard, RuPay"},
	{ID: MethodNetBanking, Name: "Net Banking", Label: "Net Banking", Description: "All Major Banks"},
	{ID: MethodWallet, Name: "Digital Wallet", Label: "Digital Wallet", Description: "Paytm, Amazon Pay"},
}

func (m Method) info() (MethodInfo, bool) {
	for _, mi := range Methods {
		if mi.ID == m {
			return mi, true
		}
	}
	return MethodInfo{}, false
}

func (m Method) Valid() bool {
	_, ok := m.info()
	return ok
}

// Label is the display label stored on transactions.
func (m Method) Label() string {
	mi, _ := m.info()
	return mi.Label
}
