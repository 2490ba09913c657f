package common

import "fmt"

var (
	ErrReleaseFetch           = fmt.Errorf("cannot fetch release")
	ErrReleaseDecode          = fmt.Errorf("cannot decode release")
	ErrPageNotFound           = fmt.Errorf("page not found")
	ErrRegenerationInProgress = fmt.Errorf("regeneration process has already started")
	ErrInstallerNotFound      = fmt.Errorf("installer not found")
)
