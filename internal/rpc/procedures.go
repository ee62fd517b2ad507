package rpc

const (
	AuthServiceName   = "wallet.v1.AuthService"
	PersonServiceName = "wallet.v1.PersonService"
	LedgerServiceName = "wallet.v1.LedgerService"
	AdminServiceName  = "wallet.v1.AdminService"
)

// Fully-qualified procedure paths, as served under the service path prefix.
const (
	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"
	AuthServiceMeProcedure       = "/" + AuthServiceName + "/Me"

	PersonServiceListPersonsProcedure  = "/" + PersonServiceName + "/ListPersons"
	PersonServiceCreatePersonProcedure = "/" + PersonServiceName + "/CreatePerson"
	PersonServiceUpdatePersonProcedure = "/" + PersonServiceName + "/UpdatePerson"
	PersonServiceDeletePersonProcedure = "/" + PersonServiceName + "/DeletePerson"

	LedgerServiceAdjustProcedure                  = "/" + LedgerServiceName + "/Adjust"
	LedgerServiceClearProcedure                   = "/" + LedgerServiceName + "/Clear"
	LedgerServiceUndoProcedure                    = "/" + LedgerServiceName + "/Undo"
	LedgerServiceRedoProcedure                    = "/" + LedgerServiceName + "/Redo"
	LedgerServiceListTransactionsProcedure        = "/" + LedgerServiceName + "/ListTransactions"
	LedgerServiceListAccountTransactionsProcedure = "/" + LedgerServiceName + "/ListAccountTransactions"
	LedgerServiceCheckWagesProcedure              = "/" + LedgerServiceName + "/CheckWages"
	LedgerServiceVerifyBalanceProcedure           = "/" + LedgerServiceName + "/VerifyBalance"

	AdminServiceListUsersProcedure     = "/" + AdminServiceName + "/ListUsers"
	AdminServiceResetPasswordProcedure = "/" + AdminServiceName + "/ResetPassword"
	AdminServiceDeleteUserProcedure    = "/" + AdminServiceName + "/DeleteUser"
)

// ServicePath returns the mux pattern for a service name.
func ServicePath(service string) string {
	return "/" + service + "/"
}
