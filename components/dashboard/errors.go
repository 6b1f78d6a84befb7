package dashboard

import "errors"

var invalidInputErrors = []error{
	errInvalidSelection,
	errInvalidDataType,
	errInvalidAlertTab,
	errInvalidMetricTab,
	errInvalidShellTab,
	errInvalidSidebar,
	errMissingAlertID,
	errMissingViewer,
	errInvalidArea,
	errInvalidDefinition,
	errInvalidConfig,
}

// IsInvalidInput reports whether err was caused by a rejected selector, identifier or widget configuration.
func IsInvalidInput(err error) bool {
	for _, target := range invalidInputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err refers to a missing alert.
func IsNotFound(err error) bool {
	return errors.Is(err, errAlertNotFound)
}
