package entity

import "strings"

type Purpose int16

const (
	PurposeUnknown       Purpose = 0
	PurposeRegistration  Purpose = 1
	PurposePasswordReset Purpose = 2
	PurposeLogin2FA      Purpose = 3
	PurposeChangeEmail   Purpose = 4
	PurposeChangeMobile  Purpose = 5
)

func (p Purpose) String() string {
	switch p {
	case PurposeRegistration:
		return "REGISTRATION"
	case PurposePasswordReset:
		return "PASSWORD_RESET"
	case PurposeLogin2FA:
		return "LOGIN_2FA"
	case PurposeChangeEmail:
		return "CHANGE_EMAIL"
	case PurposeChangeMobile:
		return "CHANGE_MOBILE"
	case PurposeUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

func (p Purpose) IsUnknown() bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposeLogin2FA, PurposeChangeEmail, PurposeChangeMobile:
		return false
	case PurposeUnknown:
		return true
	default:
		return true
	}
}

func ParsePurposeFromString(s string) Purpose {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REGISTRATION":
		return PurposeRegistration
	case "PASSWORD_RESET":
		return PurposePasswordReset
	case "LOGIN_2FA":
		return PurposeLogin2FA
	case "CHANGE_EMAIL":
		return PurposeChangeEmail
	case "CHANGE_MOBILE":
		return PurposeChangeMobile
	default:
		return PurposeUnknown
	}
}

type Channel int16

const (
	ChannelUnknown  Channel = 0
	ChannelEmail    Channel = 1
	ChannelSMS      Channel = 2
	ChannelWhatsApp Channel = 3
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "EMAIL"
	case ChannelSMS:
		return "SMS"
	case ChannelWhatsApp:
		return "WHATSAPP"
	case ChannelUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

func (c Channel) IsUnknown() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp:
		return false
	case ChannelUnknown:
		return true
	default:
		return true
	}
}

func ParseChannelFromString(s string) Channel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EMAIL":
		return ChannelEmail
	case "SMS":
		return ChannelSMS
	case "WHATSAPP":
		return ChannelWhatsApp
	default:
		return ChannelUnknown
	}
}

// Status is the outcome recorded in an audit entry.
type Status int16

const (
	StatusUnknown  Status = 0
	StatusSent     Status = 1
	StatusVerified Status = 2
	StatusFailed   Status = 3
	StatusBlocked  Status = 4
	StatusExpired  Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "OTP_SENT"
	case StatusVerified:
		return "OTP_VERIFIED"
	case StatusFailed:
		return "OTP_FAILED"
	case StatusBlocked:
		return "OTP_BLOCKED"
	case StatusExpired:
		return "OTP_EXPIRED"
	case StatusUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

func (s Status) IsUnknown() bool {
	switch s {
	case StatusSent, StatusVerified, StatusFailed, StatusBlocked, StatusExpired:
		return false
	case StatusUnknown:
		return true
	default:
		return true
	}
}

func ParseStatusFromString(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OTP_SENT":
		return StatusSent
	case "OTP_VERIFIED":
		return StatusVerified
	case "OTP_FAILED":
		return StatusFailed
	case "OTP_BLOCKED":
		return StatusBlocked
	case "OTP_EXPIRED":
		return StatusExpired
	default:
		return StatusUnknown
	}
}
