package main

import (
	"strconv"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

const denomination = "BTC"

func formatAmount(tx ledger.Transaction) string {
	return tx.Amount.String() + " " + denomination
}

func getBlockPanel(b ledger.Block) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	title := pterm.LightYellow("|BLOCK " + strconv.FormatUint(b.Index, 10) + "|")
	return pbox.WithTitle(title).WithTitleTopCenter().Sprintf(
		"Date: %s\nNonce: %d\nTransactions: %d\nPrevious Hash: %s\nHash: %s",
		b.Date(), b.Nonce, len(b.Transactions), b.PrevHash, pterm.LightCyan(b.Hash),
	)
}

func getPoolTable(txs []ledger.Transaction) (string, error) {
	data := pterm.TableData{{"#", "Sender", "Receiver", "Amount"}}
	for i, tx := range txs {
		data = append(data, []string{strconv.Itoa(i + 1), tx.Sender, tx.Receiver, formatAmount(tx)})
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
}
