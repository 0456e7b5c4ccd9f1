package validate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBind(t *testing.T) {
	values := url.Values{
		"make_model":    {"Glock 19", "ignored"},
		"serial_number": {"SN-1"},
		"unknown":       {"x"},
	}
	f := FirearmForm{StockNumber: "keep"}
	require.NoError(t, Bind(values, &f))
	require.Equal(t, "Glock 19", f.MakeModel)
	require.Equal(t, "SN-1", f.SerialNumber)
	require.Equal(t, "keep", f.StockNumber)
}

func TestBindRejectsNonPointer(t *testing.T) {
	require.Error(t, Bind(url.Values{}, FirearmForm{}))
	s := "x"
	require.Error(t, Bind(url.Values{}, &s))
}

func TestBindThenValidate(t *testing.T) {
	var f ClientForm
	require.NoError(t, Bind(url.Values{"full_name": {""}, "phone_number": {"abc"}}, &f))
	_, err := f.Input()
	errs, ok := AsErrors(err)
	require.True(t, ok)
	require.NotEmpty(t, errs.Field("full_name"))
	require.NotEmpty(t, errs.Field("phone_number"))
}
