package main

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// prompter asks the operator questions on the terminal.
type prompter interface {
	Confirm(question string) (bool, error)
	Text(label string) (string, error)
	Error(msg string)
}

type ptermPrompter struct{}

func (ptermPrompter) Confirm(question string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultText(question).WithDefaultValue(false).Show()
}

func (ptermPrompter) Text(label string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultText(label).Show()
}

func (ptermPrompter) Error(msg string) {
	pterm.Error.Println(msg)
}

type transactionAdder interface {
	AddTransaction(sender, receiver string, amount decimal.Decimal) (ledger.Transaction, error)
}

// collectTransactions keeps asking for transactions until the operator
// declines. Invalid entries are reported and asked again; only prompt
// failures abort the loop.
func collectTransactions(p prompter, pool transactionAdder) (int, error) {
	added := 0
	for {
		more, err := p.Confirm("Do you want to add a transaction?")
		if err != nil {
			return added, err
		}
		if !more {
			return added, nil
		}

		sender, err := p.Text("Sender")
		if err != nil {
			return added, err
		}
		receiver, err := p.Text("Receiver")
		if err != nil {
			return added, err
		}
		rawAmount, err := p.Text("Amount")
		if err != nil {
			return added, err
		}

		sender, receiver = strings.TrimSpace(sender), strings.TrimSpace(receiver)
		if sender == "" || receiver == "" {
			p.Error("Sender and receiver are required.")
			continue
		}
		amount, err := ledger.ParseAmount(strings.TrimSpace(rawAmount))
		if err != nil {
			p.Error("Invalid amount: " + err.Error())
			continue
		}
		if _, err := pool.AddTransaction(sender, receiver, amount); err != nil {
			if errors.Is(err, ledger.ErrInvalidTransaction) {
				p.Error(err.Error())
				continue
			}
			return added, err
		}
		added++
	}
}
