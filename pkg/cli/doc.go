// Package cli implements the vision-cli operator tool.
//
// # Commands
//
// token: mint a caller token signed with the configured secret
//
//	vision-cli token -address 0xprovider -ttl 2h
//
// inspect: print a record, its latest version number and full history
//
//	vision-cli inspect -record 42
//
// patient: list a patient's record ids in creation order
//
//	vision-cli patient -address 0xpatient
//
// audit: print the first events of the current audit log file as JSON
//
//	vision-cli audit -count 50
//
// inspect and patient read the backend named by the configuration directly,
// through the ledger, without going through the HTTP API. Against LevelDB this
// needs the server to be stopped, since LevelDB holds an exclusive lock.
package cli
