package notification

import (
	"fmt"
	"time"

	"neighborly/internal/domain"
)

// Content carries the context a notification's text is rendered from.
// Unused fields are simply left zero; the templates degrade to shorter
// sentences.
type Content struct {
	ActorName    string
	ListingTitle string
	Quantity     int
	PickupDate   *time.Time
	ReturnDate   *time.Time
	Message      string
	Reason       string
	Condition    string
}

const dateLayout = "Jan 2, 2006"

// RenderTitle maps a notification type to its title. The switch is
// exhaustive over the supported types; an unmapped type is an error,
// never a blank notification.
func RenderTitle(typ domain.NotificationType, c Content) (string, error) {
	switch typ {
	case domain.NotifExchangeRequest:
		return withTitle("New borrow request", " for ", c.ListingTitle), nil
	case domain.NotifExchangeConfirmed:
		return withTitle("Your request", " for ", c.ListingTitle) + " was approved", nil
	case domain.NotifExchangeRejected:
		return withTitle("Your request", " for ", c.ListingTitle) + " was declined", nil
	case domain.NotifExchangePickedUp:
		return withTitle("Pickup confirmed", " for ", c.ListingTitle), nil
	case domain.NotifExchangeReturnInitiated:
		return fmt.Sprintf("%s has returned %s", orSomeone(c.ActorName), orItem(c.ListingTitle)), nil
	case domain.NotifExchangeCompleted:
		return withTitle("Transaction completed", " - ", c.ListingTitle), nil
	case domain.NotifExchangeExtensionRequest:
		return fmt.Sprintf("%s requests extension", orSomeone(c.ActorName)) + suffix(" for ", c.ListingTitle), nil
	case domain.NotifExchangeExtensionApproved:
		return withTitle("Extension approved", " for ", c.ListingTitle), nil
	case domain.NotifExchangeExtensionRejected:
		return withTitle("Extension declined", " for ", c.ListingTitle), nil
	case domain.NotifExchangeCancelled:
		return withTitle("Request cancelled", " - ", c.ListingTitle), nil
	case domain.NotifExchangeRequestCancelled:
		return withTitle("Borrow request cancelled", " - ", c.ListingTitle), nil
	case domain.NotifExchangeFlagged:
		return orListing(c.ListingTitle) + " was flagged as inappropriate", nil
	case domain.NotifExchangeFlagResolved:
		return withTitle("Your flag", " on ", c.ListingTitle) + " was reviewed", nil
	case domain.NotifExchangeReminder:
		return withTitle("Return reminder", " - ", c.ListingTitle), nil
	case domain.NotifExchangeOverdue:
		return withTitle("Item overdue", " - ", c.ListingTitle), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNotificationType, typ)
}

// RenderMessage maps a notification type to its body. May return an
// empty string for types whose title carries everything.
func RenderMessage(typ domain.NotificationType, c Content) (string, error) {
	switch typ {
	case domain.NotifExchangeRequest:
		msg := ""
		if c.Quantity > 0 {
			msg += fmt.Sprintf("Quantity: %d. ", c.Quantity)
		}
		if c.PickupDate != nil {
			msg += "Pickup: " + c.PickupDate.Format(dateLayout) + ". "
		}
		if c.ReturnDate != nil {
			msg += "Return: " + c.ReturnDate.Format(dateLayout) + ". "
		}
		return msg + c.Message, nil

	case domain.NotifExchangeConfirmed:
		return "You can now coordinate pickup with the lender.", nil

	case domain.NotifExchangeRejected:
		if c.Reason != "" {
			return "The lender is unable to fulfill this request: " + c.Reason, nil
		}
		return "The lender is unable to fulfill this request at this time.", nil

	case domain.NotifExchangePickedUp:
		return fmt.Sprintf("%s confirmed pickup of %s", orSomeone(c.ActorName), orItem(c.ListingTitle)), nil

	case domain.NotifExchangeReturnInitiated:
		if c.Message != "" {
			return c.Message, nil
		}
		return "Please review and confirm the return.", nil

	case domain.NotifExchangeCompleted:
		msg := ""
		if c.Condition != "" {
			msg = "Condition: " + c.Condition + ". "
		}
		return msg + "Thank you for using the community exchange!", nil

	case domain.NotifExchangeExtensionRequest:
		msg := ""
		if c.ReturnDate != nil {
			msg += "New return date: " + c.ReturnDate.Format(dateLayout) + ". "
		}
		return msg + c.Message, nil

	case domain.NotifExchangeExtensionApproved:
		if c.ReturnDate != nil {
			return "The return date moved to " + c.ReturnDate.Format(dateLayout) + ".", nil
		}
		return "The lender approved your extension request.", nil

	case domain.NotifExchangeExtensionRejected:
		return "The lender declined your extension request. The original return date stands.", nil

	case domain.NotifExchangeCancelled, domain.NotifExchangeRequestCancelled:
		return c.Reason, nil

	case domain.NotifExchangeFlagged:
		if c.Reason != "" {
			return "Reason: " + c.Reason, nil
		}
		return "A moderator will review the report.", nil

	case domain.NotifExchangeFlagResolved:
		return "A moderator reviewed the listing you reported. Thank you for helping keep the community safe.", nil

	case domain.NotifExchangeReminder:
		if c.ReturnDate != nil {
			return "Please remember to return this item by " + c.ReturnDate.Format(dateLayout) + ".", nil
		}
		return "Please remember to return this item soon.", nil

	case domain.NotifExchangeOverdue:
		if c.ReturnDate != nil {
			return "This item was due on " + c.ReturnDate.Format(dateLayout) + ". Please coordinate with the other party to return it as soon as possible.", nil
		}
		return "This item is now overdue. Please coordinate with the other party to return it as soon as possible.", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNotificationType, typ)
}

func withTitle(base, sep, title string) string {
	if title == "" {
		return base
	}
	return base + sep + title
}

func suffix(sep, title string) string {
	if title == "" {
		return ""
	}
	return sep + title
}

func orSomeone(name string) string {
	if name == "" {
		return "Someone"
	}
	return name
}

func orItem(title string) string {
	if title == "" {
		return "an item"
	}
	return title
}

func orListing(title string) string {
	if title == "" {
		return "A listing"
	}
	return title
}
