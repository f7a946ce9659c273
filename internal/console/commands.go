package console

import (
	"context"
	"errors"
	"io"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/metrics"
	"github.com/tinoosan/bank/internal/service/account"
	"github.com/tinoosan/bank/internal/service/remit"
	"github.com/tinoosan/bank/internal/validate"
)

// done records the outcome of op and hands back input errors, which end the
// session, while swallowing the rest, which only end the operation.
func (c *Console) done(op string, err error) error {
	if errors.Is(err, io.EOF) {
		return err
	}
	c.metrics.Observe(op, err)
	if err != nil {
		c.log.Info("operation failed", "op", op, "outcome", metrics.Outcome(err), "err", err)
	}
	return nil
}

func (c *Console) receipt(op string, rec account.Receipt) {
	for _, w := range rec.Warnings {
		c.warn(op, w)
	}
	c.metrics.Warned(op, len(rec.Warnings))
	c.log.Info("operation completed", "op", op, "acc", rec.Account.AccNum)
}

func (c *Console) create(ctx context.Context) error {
	c.printf("\n--- Create New Bank Account ---\n")
	var name string
	for {
		s, err := c.ask("Enter full name (must contain at least a first and last name): ")
		if err != nil {
			return c.done("create", err)
		}
		if s == "" {
			c.printf("Error: Name cannot be empty. Creation cancelled.\n")
			return c.done("create", errs.ErrCancelled)
		}
		if err := validate.Name(s); err != nil {
			c.printf("Warning: Invalid name format. %s. Please re-enter.\n", reason(err))
			continue
		}
		name = s
		break
	}
	c.printf("Name '%s' successfully validated. Continuing account setup...\n", name)

	id, err := c.promptID()
	if err != nil {
		return c.done("create", err)
	}
	var typ bank.AccountType
	for {
		s, err := c.ask("Account Type (savings/current): ")
		if err != nil {
			return c.done("create", err)
		}
		if typ, err = validate.AccountType(s); err != nil {
			c.errorf(err)
			continue
		}
		break
	}
	pin, err := c.promptPIN("Enter 4-digit PIN")
	if err != nil {
		return c.done("create", err)
	}

	rec, err := c.accounts.Create(ctx, account.CreateInput{Name: name, IDNumber: id, Type: typ, PIN: pin})
	if err != nil {
		if errors.Is(err, errs.ErrPersistence) {
			c.printf("Error: failed to save account. Check file permissions.\n")
		} else {
			c.errorf(err)
		}
		return c.done("create", err)
	}
	c.receipt("create", rec)
	c.printf("\nSuccess: Account created!\n")
	c.printf("Account Number: %s\nInitial Balance: RM%s\n", rec.Account.AccNum, bank.FormatAmount(rec.Account.Balance))
	c.progress("Finalizing creation...")
	return c.done("create", nil)
}

func (c *Console) delete(ctx context.Context) error {
	c.printf("\n--- Delete Bank Account ---\n")
	members, err := c.accounts.List(ctx)
	if err != nil {
		c.printf("No accounts found.\n")
		return c.done("delete", err)
	}
	if len(members) == 0 {
		c.printf("No accounts registered.\n")
		return c.done("delete", errs.ErrCancelled)
	}
	c.printf("Registered accounts:\n")
	c.accountTable(members)

	accNum, err := c.promptExistingAccount(ctx)
	if err != nil {
		return c.done("delete", err)
	}
	acc, err := c.accounts.Lookup(ctx, accNum)
	if err != nil {
		c.printf("Error: failed to load account file for %s.\n", accNum)
		return c.done("delete", err)
	}

	last4, err := c.ask("Enter last 4 characters of ID to confirm: ")
	if err != nil {
		return c.done("delete", err)
	}
	if err := account.CheckIDSuffix(acc, last4); err != nil {
		c.errorf(err)
		return c.done("delete", err)
	}

	pin1, err := c.promptPIN("Enter 4-digit PIN for this account")
	if err != nil {
		return c.done("delete", err)
	}
	if _, err := c.accounts.Authenticate(ctx, accNum, pin1); err != nil {
		if errors.Is(err, errs.ErrAuthentication) {
			c.printf("Error: PIN incorrect. Delete aborted.\n")
		} else {
			c.errorf(err)
		}
		return c.done("delete", err)
	}
	pin2, err := c.promptPIN("Re-enter 4-digit PIN to confirm deletion")
	if err != nil {
		return c.done("delete", err)
	}
	if err := account.CheckPINConfirmation(pin1, pin2); err != nil {
		c.printf("Error: PIN mismatch on confirmation. Delete aborted.\n")
		return c.done("delete", err)
	}

	c.printf("ARE YOU SURE you want to delete account %s? THIS CANNOT BE UNDONE. (yes/no): ", accNum)
	answer, err := c.readLine()
	if err != nil {
		return c.done("delete", err)
	}
	if !validate.Confirm(answer) {
		c.printf("Delete cancelled by user.\n")
		return c.done("delete", errs.ErrCancelled)
	}

	rec, err := c.accounts.Delete(ctx, account.DeleteInput{
		AccNum: accNum, IDLast4: last4, PIN: pin1, PINConfirm: pin2, Confirmed: true,
	})
	if err != nil {
		c.errorf(err)
		return c.done("delete", err)
	}
	c.receipt("delete", rec)
	c.printf("Success: Account %s deleted and removed from records.\n", accNum)
	c.progress("Cleaning records...")
	return c.done("delete", nil)
}

// authenticate prompts for account and PIN and reports failures the way
// deposit and withdraw share.
func (c *Console) authenticate(ctx context.Context, opLabel string) (bank.Account, string, error) {
	accNum, err := c.promptExistingAccount(ctx)
	if err != nil {
		return bank.Account{}, "", err
	}
	pin, err := c.promptPIN("Enter 4-digit PIN")
	if err != nil {
		return bank.Account{}, "", err
	}
	acc, err := c.accounts.Authenticate(ctx, accNum, pin)
	switch {
	case errors.Is(err, errs.ErrAuthentication):
		c.printf("Error: authentication failed (PIN incorrect). %s aborted.\n", opLabel)
	case err != nil:
		c.printf("Error: failed to load account for %s.\n", accNum)
	}
	return acc, pin, err
}

func (c *Console) deposit(ctx context.Context) error {
	c.printf("\n--- Deposit ---\n")
	acc, pin, err := c.authenticate(ctx, "Deposit")
	if err != nil {
		return c.done("deposit", err)
	}
	c.printf("Current balance: RM%s\n", bank.FormatAmount(acc.Balance))
	limit := c.accounts.DepositLimit()
	amt, err := c.promptAmount("Enter deposit amount (greater than RM0.00, max RM"+grouped(limit)+")", &limit)
	if err != nil {
		return c.done("deposit", err)
	}

	rec, err := c.accounts.Deposit(ctx, acc.AccNum, pin, amt)
	if err != nil {
		if errors.Is(err, errs.ErrPersistence) {
			c.printf("Error: failed to update account file.\n")
		} else {
			c.errorf(err)
		}
		return c.done("deposit", err)
	}
	c.receipt("deposit", rec)
	c.metrics.Moved("deposit", amt)
	c.printf("Success: Deposited RM%s to account %s.\nNew balance: RM%s\n",
		bank.FormatAmount(amt), acc.AccNum, bank.FormatAmount(rec.Account.Balance))
	c.progress("Updating account...")
	return c.done("deposit", nil)
}

func (c *Console) withdraw(ctx context.Context) error {
	c.printf("\n--- Withdraw ---\n")
	acc, pin, err := c.authenticate(ctx, "Withdrawal")
	if err != nil {
		return c.done("withdraw", err)
	}
	c.printf("Available balance: RM%s\n", bank.FormatAmount(acc.Balance))
	amt, err := c.promptAmount("Enter withdrawal amount (greater than RM0.00)", nil)
	if err != nil {
		return c.done("withdraw", err)
	}

	rec, err := c.accounts.Withdraw(ctx, acc.AccNum, pin, amt)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInsufficientFunds):
			c.printf("Error: insufficient funds. %s.\n", reason(err))
		case errors.Is(err, errs.ErrPersistence):
			c.printf("Error: failed to update account file after withdrawal.\n")
		default:
			c.errorf(err)
		}
		return c.done("withdraw", err)
	}
	c.receipt("withdraw", rec)
	c.metrics.Moved("withdraw", amt)
	c.printf("Success: Withdrawn RM%s from account %s.\nNew balance: RM%s\n",
		bank.FormatAmount(amt), acc.AccNum, bank.FormatAmount(rec.Account.Balance))
	c.progress("Processing withdrawal...")
	return c.done("withdraw", nil)
}

func (c *Console) remittance(ctx context.Context) error {
	c.printf("\n--- Remittance / Transfer ---\n")
	name, err := c.ask("Sender full name (for verification): ")
	if err != nil {
		return c.done("remit", err)
	}
	if name == "" {
		c.printf("Error: name cannot be empty.\n")
		return c.done("remit", errs.Invalid("name cannot be empty"))
	}
	from, err := c.promptExistingAccount(ctx)
	if err != nil {
		return c.done("remit", err)
	}
	pin, err := c.promptPIN("Enter sender 4-digit PIN")
	if err != nil {
		return c.done("remit", err)
	}
	sender, err := c.remit.Verify(ctx, name, from, pin)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrAuthentication):
			c.printf("Error: authentication failed (PIN incorrect). Remittance aborted.\n")
		case errors.Is(err, errs.ErrNameMismatch):
			c.errorf(err)
		default:
			c.printf("Error: failed to load sender account.\n")
		}
		return c.done("remit", err)
	}

	to, err := c.ask("Receiver account number: ")
	if err != nil {
		return c.done("remit", err)
	}
	if _, err := c.remit.Receiver(ctx, sender, to); err != nil {
		if errors.Is(err, errs.ErrPersistence) || errors.Is(err, errs.ErrCorruptRecord) {
			c.printf("Error: failed to load receiver account.\n")
		} else {
			c.errorf(err)
		}
		return c.done("remit", err)
	}

	amt, err := c.promptAmount("Enter transfer amount (greater than RM0.00)", nil)
	if err != nil {
		return c.done("remit", err)
	}
	rec, err := c.remit.Remit(ctx, remit.Input{SenderName: name, From: from, PIN: pin, To: to, Amount: amt})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInsufficientFunds):
			c.printf("Error: insufficient funds. %s.\n", reason(err))
		case remit.IsPartial(err):
			c.printf("Error: failed to update account file(s) after remittance. Aborting.\n")
			c.printf("Warning: account %s was debited but %s was not credited.\n", from, to)
			c.log.Error("remittance partially applied", "from", from, "to", to, "err", err)
		case errors.Is(err, errs.ErrPersistence):
			c.printf("Error: failed to update account file(s) after remittance. Aborting.\n")
		default:
			c.errorf(err)
		}
		return c.done("remit", err)
	}
	c.receipt("remit", rec)
	c.metrics.Moved("remit", amt)
	c.metrics.Fee(rec.Fee)
	c.printf("Success: Sent RM%s from %s to %s.\n", bank.FormatAmount(amt), from, to)
	if rec.Fee.IsPos() {
		c.printf("Fee applied: RM%s\n", bank.FormatAmount(rec.Fee))
	}
	c.printf("Sender new balance: RM%s\n", bank.FormatAmount(rec.Account.Balance))
	c.progress("Transferring funds...")
	return c.done("remit", nil)
}

func (c *Console) help(ctx context.Context) error {
	c.printf("\n--- Help & Support ---\n")
	c.printf("What are you looking for?\n")
	for _, t := range help.Topics() {
		c.printf("%s. %s\n", t.Code, t.Label)
	}
	choice, err := c.ask("Enter choice or 'back' to return: ")
	if err != nil {
		return err
	}
	topic, ok := help.Lookup(choice)
	if !ok {
		c.printf("Returning to main menu.\n")
		return nil
	}
	c.printf("\n%s\n", topic.Body)
	if !topic.Ticket {
		return nil
	}

	contact, err := c.ask("Enter your email or phone: ")
	if err != nil {
		return c.done("help", err)
	}
	issue, err := c.ask("Briefly describe the issue: ")
	if err != nil {
		return c.done("help", err)
	}
	_, err = c.desk.Submit(ctx, contact, issue)
	if errors.Is(err, errs.ErrPersistence) {
		c.printf("Error: failed to save help request.\n")
		return c.done("help", err)
	}
	c.printf("Request received. We'll notify you at %s (saved locally).\n", contact)
	if err != nil {
		c.warn("help", err)
		c.metrics.Warned("help", 1)
	}
	return c.done("help", nil)
}
