package usecase

import "errors"

var errDeliveryFailed = errors.New("smtp connection refused")

type fakeOTPSender struct {
	fail     bool
	lastTo   string
	lastCode string
	calls    int
}

func (f *fakeOTPSender) SendPasswordResetOTP(to, code string) error {
	f.calls++
	f.lastTo = to
	f.lastCode = code
	if f.fail {
		return errDeliveryFailed
	}

	return nil
}
