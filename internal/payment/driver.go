package payment

// Driver is the interface that all deposit gateway drivers must implement
type Driver interface {
	// SetConfig sets the configuration for the driver
	SetConfig(config map[string]interface{}) error

	// DepositAddress returns the address the user sends funds to.
	DepositAddress(userID string) (string, error)

	// IssueReference mints the reference recorded on the ledger entry for
	// a confirmed deposit.
	IssueReference() string

	// VerifyNotify verifies a settlement callback.
	// Returns: isValid, userID, reference, error
	VerifyNotify(params map[string]interface{}) (bool, string, string, error)
}
