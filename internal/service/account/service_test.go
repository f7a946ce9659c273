package account

import (
    "context"
    "errors"
    "math/rand/v2"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tinoosan/bank/internal/accnum"
    "github.com/tinoosan/bank/internal/bank"
    "github.com/tinoosan/bank/internal/errs"
    "github.com/tinoosan/bank/internal/journal"
    "github.com/tinoosan/bank/internal/record"
    "github.com/tinoosan/bank/internal/storage/memory"
)

// flakyIndex wraps the memory index and fails the selected calls.
type flakyIndex struct {
    *memory.Store
    failAdd    bool
    failRemove bool
}

func (f *flakyIndex) Add(ctx context.Context, accNum string) error {
    if f.failAdd { return errors.New("index.txt: permission denied") }
    return f.Store.Add(ctx, accNum)
}

func (f *flakyIndex) Remove(ctx context.Context, accNum string) (bool, error) {
    if f.failRemove { return false, errors.New("rename index.tmp: permission denied") }
    return f.Store.Remove(ctx, accNum)
}

// flakyKV fails Delete on demand.
type flakyKV struct {
    *memory.Store
    failDelete bool
}

func (f *flakyKV) Delete(ctx context.Context, key string) error {
    if f.failDelete { return errors.New("unlink: device busy") }
    return f.Store.Delete(ctx, key)
}

type failingSink struct{}

func (failingSink) Append(context.Context, journal.Event) error { return errors.New("transaction.log: read-only") }

type fixture struct {
    store *memory.Store
    index *flakyIndex
    kv    *flakyKV
    svc   Service
}

func setup(t *testing.T) *fixture {
    t.Helper()
    store := memory.New()
    f := &fixture{store: store, index: &flakyIndex{Store: store}, kv: &flakyKV{Store: store}}
    f.svc = New(record.New(f.kv, f.index), f.index, journal.New(store), accnum.New(rand.NewPCG(1, 2)), bank.Zero())
    return f
}

func create(t *testing.T, svc Service, name, id string, typ bank.AccountType, pin string) bank.Account {
    t.Helper()
    rec, err := svc.Create(context.Background(), CreateInput{Name: name, IDNumber: id, Type: typ, PIN: pin})
    require.NoError(t, err)
    require.Empty(t, rec.Warnings)
    return rec.Account
}

func TestCreate_StartsAtZeroAndIsIndexed(t *testing.T) {
    f := setup(t)
    ctx := context.Background()
    acc := create(t, f.svc, "Jane Doe", "1234567", "Savings", "1111")

    assert.Regexp(t, `^[1-9][0-9]{6,8}$`, acc.AccNum)
    assert.Equal(t, bank.AccountTypeSavings, acc.Type)
    ok, err := f.svc.Exists(ctx, acc.AccNum)
    require.NoError(t, err)
    assert.True(t, ok)

    loaded, err := f.svc.Lookup(ctx, acc.AccNum)
    require.NoError(t, err)
    assert.Equal(t, "0.00", bank.FormatAmount(loaded.Balance))
    assert.Equal(t, "Jane Doe", loaded.Name)

    events := f.store.Events()
    require.Len(t, events, 1)
    assert.Equal(t, "CREATE account "+acc.AccNum+" (Name: Jane Doe, Type: savings)", events[0].Message)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
    f := setup(t)
    cases := []CreateInput{
        {Name: "", IDNumber: "1234567", Type: "savings", PIN: "1111"},
        {Name: "Jane", IDNumber: "1234567", Type: "savings", PIN: "1111"},
        {Name: "Jane Doe", IDNumber: "123", Type: "savings", PIN: "1111"},
        {Name: "Jane Doe", IDNumber: "1234567", Type: "checking", PIN: "1111"},
        {Name: "Jane Doe", IDNumber: "1234567", Type: "savings", PIN: "11"},
    }
    for _, in := range cases {
        _, err := f.svc.Create(context.Background(), in)
        assert.ErrorIs(t, err, errs.ErrInvalid, "%+v", in)
    }
    n, _ := f.svc.Count(context.Background())
    assert.Zero(t, n)
}

func TestCreate_IndexFailureOnlyWarns(t *testing.T) {
    f := setup(t)
    f.index.failAdd = true
    rec, err := f.svc.Create(context.Background(), CreateInput{Name: "Jane Doe", IDNumber: "1234567", Type: "savings", PIN: "1111"})
    require.NoError(t, err)
    require.Len(t, rec.Warnings, 1)
    var cw *errs.ConsistencyWarning
    require.ErrorAs(t, rec.Warnings[0], &cw)
    assert.Equal(t, "create", cw.Op)
    assert.Equal(t, rec.Account.AccNum, cw.AccNum)

    // record written, not listed
    keys, _ := f.store.List(context.Background())
    assert.Equal(t, []string{rec.Account.AccNum}, keys)
    ok, _ := f.svc.Exists(context.Background(), rec.Account.AccNum)
    assert.False(t, ok)

    warnings, err := f.svc.Audit(context.Background())
    require.NoError(t, err)
    require.Len(t, warnings, 1)
    assert.Contains(t, warnings[0].Error(), "not listed in index")
}

func TestDepositWithdraw(t *testing.T) {
    f := setup(t)
    ctx := context.Background()
    acc := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")

    rec, err := f.svc.Deposit(ctx, acc.AccNum, "1111", bank.Cents(10000))
    require.NoError(t, err)
    assert.Equal(t, "100.00", bank.FormatAmount(rec.Account.Balance))

    _, err = f.svc.Deposit(ctx, acc.AccNum, "1111", bank.Cents(5_000_001))
    assert.ErrorIs(t, err, errs.ErrLimitExceeded)
    _, err = f.svc.Deposit(ctx, acc.AccNum, "1111", bank.Zero())
    assert.ErrorIs(t, err, errs.ErrInvalid)

    _, err = f.svc.Withdraw(ctx, acc.AccNum, "1111", bank.Cents(15000))
    require.ErrorIs(t, err, errs.ErrInsufficientFunds)
    assert.Contains(t, err.Error(), "You have RM100.00 available")

    rec, err = f.svc.Withdraw(ctx, acc.AccNum, "1111", bank.Cents(5000))
    require.NoError(t, err)
    assert.Equal(t, "50.00", bank.FormatAmount(rec.Account.Balance))

    // exact balance is allowed
    rec, err = f.svc.Withdraw(ctx, acc.AccNum, "1111", bank.Cents(5000))
    require.NoError(t, err)
    assert.True(t, rec.Account.Balance.IsZero())

    msgs := []string{}
    for _, e := range f.store.Events() { msgs = append(msgs, e.Message) }
    assert.Contains(t, msgs, "DEPOSIT RM100.00 to "+acc.AccNum+" (NewBal: RM100.00)")
    assert.Contains(t, msgs, "WITHDRAW RM50.00 from "+acc.AccNum+" (NewBal: RM50.00)")
}

func TestDeposit_LimitIsInclusive(t *testing.T) {
    f := setup(t)
    acc := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")
    rec, err := f.svc.Deposit(context.Background(), acc.AccNum, "1111", bank.Cents(5_000_000))
    require.NoError(t, err)
    assert.Equal(t, "50000.00", bank.FormatAmount(rec.Account.Balance))
    assert.Equal(t, "50000.00", bank.FormatAmount(f.svc.DepositLimit()))
}

func TestAuthenticate(t *testing.T) {
    f := setup(t)
    ctx := context.Background()
    acc := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")

    _, err := f.svc.Authenticate(ctx, acc.AccNum, "9999")
    assert.ErrorIs(t, err, errs.ErrAuthentication)
    _, err = f.svc.Authenticate(ctx, "7777777", "1111")
    assert.ErrorIs(t, err, errs.ErrNotFound)
    _, err = f.svc.Authenticate(ctx, "12ab", "1111")
    assert.ErrorIs(t, err, errs.ErrInvalid)

    // a wrong PIN leaves the balance alone
    _, err = f.svc.Deposit(ctx, acc.AccNum, "0000", bank.Cents(100))
    require.ErrorIs(t, err, errs.ErrAuthentication)
    got, _ := f.svc.Lookup(ctx, acc.AccNum)
    assert.True(t, got.Balance.IsZero())
}

func TestDelete(t *testing.T) {
    f := setup(t)
    ctx := context.Background()
    acc := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")
    in := DeleteInput{AccNum: acc.AccNum, IDLast4: "4567", PIN: "1111", PINConfirm: "1111", Confirmed: true}

    bad := in
    bad.IDLast4 = "4568"
    _, err := f.svc.Delete(ctx, bad)
    assert.ErrorIs(t, err, errs.ErrIDMismatch)

    bad = in
    bad.PIN, bad.PINConfirm = "2222", "2222"
    _, err = f.svc.Delete(ctx, bad)
    assert.ErrorIs(t, err, errs.ErrAuthentication)

    bad = in
    bad.PINConfirm = "1112"
    _, err = f.svc.Delete(ctx, bad)
    assert.ErrorIs(t, err, errs.ErrPINMismatch)

    bad = in
    bad.Confirmed = false
    _, err = f.svc.Delete(ctx, bad)
    assert.ErrorIs(t, err, errs.ErrCancelled)

    rec, err := f.svc.Delete(ctx, in)
    require.NoError(t, err)
    assert.Empty(t, rec.Warnings)

    ok, _ := f.svc.Exists(ctx, acc.AccNum)
    assert.False(t, ok)
    _, err = f.svc.Lookup(ctx, acc.AccNum)
    assert.ErrorIs(t, err, errs.ErrNotFound)
    last := f.store.Events()[len(f.store.Events())-1]
    assert.Equal(t, "DELETE account "+acc.AccNum+" (Name: Jane Doe)", last.Message)
}

func TestDelete_RecordFailureStillRemovesIndex(t *testing.T) {
    f := setup(t)
    ctx := context.Background()
    acc := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")
    f.kv.failDelete = true

    rec, err := f.svc.Delete(ctx, DeleteInput{AccNum: acc.AccNum, IDLast4: "4567", PIN: "1111", PINConfirm: "1111", Confirmed: true})
    require.NoError(t, err)
    require.Len(t, rec.Warnings, 1)
    assert.Contains(t, rec.Warnings[0].Error(), "removing index entry anyway")

    ok, _ := f.svc.Exists(ctx, acc.AccNum)
    assert.False(t, ok)
    keys, _ := f.store.List(ctx)
    assert.Equal(t, []string{acc.AccNum}, keys, "dangling record stays behind")
}

func TestDelete_IndexFailureWarns(t *testing.T) {
    f := setup(t)
    ctx := context.Background()
    acc := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")
    f.index.failRemove = true

    rec, err := f.svc.Delete(ctx, DeleteInput{AccNum: acc.AccNum, IDLast4: "4567", PIN: "1111", PINConfirm: "1111", Confirmed: true})
    require.NoError(t, err)
    require.Len(t, rec.Warnings, 1)
    var cw *errs.ConsistencyWarning
    require.ErrorAs(t, rec.Warnings[0], &cw)
    assert.Equal(t, "delete", cw.Op)

    // dangling index line: listed but the record is gone
    warnings, err := f.svc.Audit(ctx)
    require.NoError(t, err)
    require.Len(t, warnings, 1)
    assert.Contains(t, warnings[0].Error(), "has no account record")
}

func TestCheckHelpers(t *testing.T) {
    acc := bank.Account{ID: "1234567"}
    assert.NoError(t, CheckIDSuffix(acc, "4567"))
    assert.ErrorIs(t, CheckIDSuffix(acc, "45"), errs.ErrInvalid)
    assert.ErrorIs(t, CheckIDSuffix(acc, "1234"), errs.ErrIDMismatch)
    assert.ErrorIs(t, CheckIDSuffix(bank.Account{ID: "12"}, "0012"), errs.ErrIDMismatch)

    assert.NoError(t, CheckPINConfirmation("1111", "1111"))
    assert.ErrorIs(t, CheckPINConfirmation("1111", "2222"), errs.ErrPINMismatch)
}

func TestJournalFailureIsAWarning(t *testing.T) {
    store := memory.New()
    svc := New(record.New(store, store), store, journal.New(failingSink{}), accnum.New(rand.NewPCG(3, 4)), bank.Cents(100))
    rec, err := svc.Create(context.Background(), CreateInput{Name: "Jane Doe", IDNumber: "1234567", Type: "savings", PIN: "1111"})
    require.NoError(t, err)
    require.Len(t, rec.Warnings, 1)
    assert.Contains(t, rec.Warnings[0].Error(), "transaction log")
    assert.Equal(t, "1.00", bank.FormatAmount(svc.DepositLimit()))
}

func TestList(t *testing.T) {
    f := setup(t)
    a := create(t, f.svc, "Jane Doe", "1234567", "savings", "1111")
    b := create(t, f.svc, "John Roe", "7654321", "current", "2222")
    members, err := f.svc.List(context.Background())
    require.NoError(t, err)
    assert.Equal(t, []string{a.AccNum, b.AccNum}, members)
    n, err := f.svc.Count(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 2, n)
}
