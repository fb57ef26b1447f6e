// Package wizard drives multi-step forms.
//
// A Step owns two independent element collections: the elements of this step,
// which are prepared when the step's form is first requested, and every
// element of the wizard, which are all saved whenever any step saves. Element
// state lives in a Container; elements themselves hold no durable state.
//
//	step := wizard.NewStep(container, form.New("address", nil), id, "address",
//		wizard.WithElements(wizard.NewCollection(street)),
//		wizard.WithAllElements(wizard.NewCollection(street, body)),
//	)
//	f, err := step.GetForm(ctx)   // ProcessRequest, Init, Configure once per element
//	err = step.Submit(ctx, values) // DoBeforeValidation, DoOnSubmit
//	err = step.SaveForm(ctx)       // Save on every wizard element
package wizard
