package sim

import "errors"

// Every rejection leaves the account untouched.
var (
	ErrInvalidQuantity             = errors.New("invalid quantity")
	ErrInvalidPrice                = errors.New("invalid price")
	ErrInvalidLeverage             = errors.New("invalid leverage")
	ErrInsufficientMargin          = errors.New("insufficient margin")
	ErrDuplicateLeveragedDirection = errors.New("leveraged lot already open in this direction")
	ErrLotNotFound                 = errors.New("lot not found")
	ErrOverCloseQuantity           = errors.New("close quantity exceeds lot quantity")
	ErrSimulationTerminated        = errors.New("simulation terminated")
	ErrInvalidStop                 = errors.New("invalid stop-loss or take-profit")
)
